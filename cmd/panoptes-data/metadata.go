package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/panoptes/panoptes-data-go/pkg/observations"
	"github.com/panoptes/panoptes-data-go/pkg/observations/index"
)

type metadataFlags struct {
	sequenceID    string
	unitID        string
	startDate     string
	endDate       string
	outputDir     string
	includeStatus bool
}

func newMetadataCommand() *cobra.Command {
	flags := &metadataFlags{}

	cmd := &cobra.Command{
		Use:   "get-metadata",
		Short: "Save observation metadata to a CSV file",
		Long:  "Save the metadata of one sequence, or of every sequence matching a unit and date range, to a CSV file.",
		Run: func(cmd *cobra.Command, args []string) {
			runCommand(cmd, fx.Invoke(
				func(lc fx.Lifecycle, sh fx.Shutdowner, l *zap.Logger, provider index.Provider) {
					startAction(lc, sh, l, "get-metadata", func(ctx context.Context) error {
						return runGetMetadata(ctx, provider, flags)
					})
				}),
				index.Module)
		},
	}

	cmd.Flags().StringVar(&flags.sequenceID, "sequence-id", "", "save metadata for this sequence only")
	cmd.Flags().StringVar(&flags.unitID, "unit-id", "", "save metadata for observations from this unit")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "earliest observation date (inclusive)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "latest observation date (inclusive)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", ".", "directory to write the CSV into, or - for stdout")
	cmd.Flags().BoolVar(&flags.includeStatus, "include-status", false, "include the status column")

	return cmd
}

func runGetMetadata(ctx context.Context, provider index.Provider, flags *metadataFlags) error {
	var records []observations.Record
	var outputName string

	switch {
	case flags.sequenceID != "":
		record, err := index.FindBySequenceID(ctx, provider, flags.sequenceID)
		if err != nil {
			return err
		}
		records = []observations.Record{*record}
		outputName = fmt.Sprintf("%s-metadata.csv", flags.sequenceID)

	case flags.unitID != "":
		start, err := parseDate(flags.startDate)
		if err != nil {
			return err
		}
		end, err := parseDate(flags.endDate)
		if err != nil {
			return err
		}

		records, err = index.Search(ctx, provider, index.Criteria{
			UnitID:        flags.unitID,
			StartDate:     start,
			EndDate:       end,
			IncludeStatus: flags.includeStatus,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No observations matched the search criteria.")
			return nil
		}
		outputName = metadataFileName(flags.unitID, start, end)

	default:
		return errors.New("either --sequence-id or --unit-id is required")
	}

	if flags.outputDir == "-" {
		return index.ExportCSV(os.Stdout, records, flags.includeStatus)
	}

	if err := os.MkdirAll(flags.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	outputPath := filepath.Join(flags.outputDir, outputName)
	f, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "creating metadata file")
	}
	defer func() { _ = f.Close() }()

	if err := index.ExportCSV(f, records, flags.includeStatus); err != nil {
		return err
	}

	fmt.Printf("Saved metadata for %d observation(s) to %s.\n", len(records), outputPath)
	return nil
}

// metadataFileName names a unit export after the unit and its date bounds,
// e.g. PAN001-2018-01-01-2018-12-31-metadata.csv. Open-ended bounds are
// left out of the name.
func metadataFileName(unitID string, start, end time.Time) string {
	name := unitID
	if !start.IsZero() {
		name += "-" + start.Format("2006-01-02")
	}
	if !end.IsZero() {
		name += "-" + end.Format("2006-01-02")
	}
	return name + "-metadata.csv"
}
