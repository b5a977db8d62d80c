package index

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/panoptes/panoptes-data-go/pkg/observations"
)

// ExportCSV writes the records to w as CSV with a header row. The column
// order follows the observations index. The status column is included
// only when includeStatus is set.
func ExportCSV(w io.Writer, records []observations.Record, includeStatus bool) error {
	columns := make([]string, 0, len(observations.Columns))
	for _, column := range observations.Columns {
		if column == observations.ColStatus && !includeStatus {
			continue
		}
		columns = append(columns, column)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	row := make([]string, len(columns))
	for _, record := range records {
		for i, column := range columns {
			value, _ := record.ColumnValue(column)
			row[i] = value
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write CSV row for %s", record.SequenceID)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV output")
}
