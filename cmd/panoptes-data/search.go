package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/panoptes/panoptes-data-go/pkg/observations"
	"github.com/panoptes/panoptes-data-go/pkg/observations/index"
)

// dateLayouts are the formats accepted for --start-date and --end-date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q: want YYYY-MM-DD or RFC3339", value)
}

type searchFlags struct {
	name          string
	unitID        string
	startDate     string
	endDate       string
	minNumImages  int
	status        string
	includeStatus bool

	ra, dec       float64
	raSet, decSet bool
	radius        float64
}

func (f *searchFlags) criteria() (index.Criteria, error) {
	start, err := parseDate(f.startDate)
	if err != nil {
		return index.Criteria{}, err
	}
	end, err := parseDate(f.endDate)
	if err != nil {
		return index.Criteria{}, err
	}

	criteria := index.Criteria{
		ByName:        f.name,
		UnitID:        f.unitID,
		StartDate:     start,
		EndDate:       end,
		MinNumImages:  f.minNumImages,
		Status:        f.status,
		IncludeStatus: f.includeStatus,
		Radius:        f.radius,
	}
	if f.raSet {
		criteria.RA = &f.ra
	}
	if f.decSet {
		criteria.Dec = &f.dec
	}
	return criteria, nil
}

func newSearchCommand() *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the observations index",
		Long:  "Search the observations index by field name, unit, and date range.",
		Run: func(cmd *cobra.Command, args []string) {
			flags.raSet = cmd.Flags().Changed("ra")
			flags.decSet = cmd.Flags().Changed("dec")
			runCommand(cmd, fx.Invoke(
				func(lc fx.Lifecycle, sh fx.Shutdowner, l *zap.Logger, provider index.Provider) {
					startAction(lc, sh, l, "search", func(ctx context.Context) error {
						return runSearch(ctx, provider, flags)
					})
				}),
				index.Module)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "match field names containing this text (case-insensitive)")
	cmd.Flags().StringVar(&flags.unitID, "unit-id", "", "match observations from this unit, e.g. PAN012")
	cmd.Flags().Float64Var(&flags.ra, "ra", 0, "RA in degrees of the search center")
	cmd.Flags().Float64Var(&flags.dec, "dec", 0, "Dec in degrees of the search center")
	cmd.Flags().Float64Var(&flags.radius, "radius", index.DefaultRadius, "search radius in degrees (half the side of the box)")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "earliest observation date (inclusive)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "latest observation date (inclusive)")
	cmd.Flags().IntVar(&flags.minNumImages, "min-num-images", 0, "minimum number of images in the sequence")
	cmd.Flags().StringVar(&flags.status, "status", "", "match this processing status exactly")
	cmd.Flags().BoolVar(&flags.includeStatus, "include-status", false, "include the status column in the output")

	return cmd
}

func runSearch(ctx context.Context, provider index.Provider, flags *searchFlags) error {
	criteria, err := flags.criteria()
	if err != nil {
		return err
	}

	results, err := index.Search(ctx, provider, criteria)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No observations matched the search criteria.")
		return nil
	}

	printSearchResults(os.Stdout, results, criteria.IncludeStatus || criteria.Status != "")
	fmt.Printf("\n%d observation(s) found.\n", len(results))
	return nil
}

// searchColumns are the index columns shown by the search table, in order.
var searchColumns = []string{
	observations.ColSequenceID,
	observations.ColFieldName,
	observations.ColCoordinatesMountRA,
	observations.ColCoordinatesMountDec,
	observations.ColNumImages,
	observations.ColExpTime,
	observations.ColTotalExpTime,
	observations.ColTime,
}

func printSearchResults(w io.Writer, results []observations.Record, withStatus bool) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	columns := searchColumns
	if withStatus {
		columns = append(append([]string{}, columns...), observations.ColStatus)
	}

	_, _ = fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))

	for _, record := range results {
		values := make([]string, len(columns))
		for i, column := range columns {
			values[i], _ = record.ColumnValue(column)
		}
		_, _ = fmt.Fprintln(tw, strings.Join(values, "\t"))
	}
}
