package index

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/observations"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

// legacyColumnRenames maps upstream header names that have since been
// renamed onto their canonical column.
var legacyColumnRenames = map[string]string{
	"camera_camera_id": observations.ColCameraID,
}

// timeLayouts are the timestamp formats seen in upstream index exports.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// badFieldNameSuffix marks field names that are really timestamp parsing
// artifacts from upstream; they all refer to M42.
const badFieldNameSuffix = "00:00:42+00:00"

// CSVProvider loads the observations index from a CSV object.
type CSVProvider struct {
	store  storage.ObjectStore
	key    string
	logger logging.Interface
}

var _ Provider = (*CSVProvider)(nil)

// NewCSVProvider creates a provider that reads the index CSV at key from
// the given store.
func NewCSVProvider(store storage.ObjectStore, key string, logger logging.Interface) *CSVProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CSVProvider{store: store, key: key, logger: logger}
}

// Load fetches and parses the index.
func (p *CSVProvider) Load(ctx context.Context) ([]observations.Record, error) {
	reader, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching observations index %s", p.key)
	}
	defer func() { _ = reader.Close() }()

	records, err := ParseCSV(reader)
	if err != nil {
		return nil, err
	}

	p.logger.WithField("key", p.key).
		WithField("num_records", len(records)).
		Debug("Loaded observations index")

	return records, nil
}

// ParseCSV parses an observations index export. Legacy headers are renamed,
// unknown columns are ignored, and known-bad field names are repaired.
func ParseCSV(r io.Reader) ([]observations.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading index header")
	}

	columns := make(map[int]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.ToLower(name))
		if canonical, ok := legacyColumnRenames[name]; ok {
			name = canonical
		}
		if observations.KnownColumn(name) {
			columns[i] = name
		}
	}

	var records []observations.Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "reading index row %d", line)
		}

		record, err := recordFromRow(columns, row)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing index row %d", line)
		}
		records = append(records, record)
	}

	return records, nil
}

func recordFromRow(columns map[int]string, row []string) (observations.Record, error) {
	var record observations.Record

	for i, value := range row {
		name, ok := columns[i]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		var err error
		switch name {
		case observations.ColSequenceID:
			record.SequenceID = value
		case observations.ColUnitID:
			record.UnitID = strings.ToUpper(value)
		case observations.ColCameraID:
			record.CameraID = value
		case observations.ColFieldName:
			record.FieldName = repairFieldName(value)
		case observations.ColCoordinatesMountRA:
			record.CoordinatesMountRA, err = strconv.ParseFloat(value, 64)
		case observations.ColCoordinatesMountDec:
			record.CoordinatesMountDec, err = strconv.ParseFloat(value, 64)
		case observations.ColExpTime:
			record.ExpTime, err = strconv.ParseFloat(value, 64)
		case observations.ColNumImages:
			record.NumImages, err = strconv.Atoi(value)
		case observations.ColTotalExpTime:
			record.TotalExpTime, err = strconv.ParseFloat(value, 64)
		case observations.ColTime:
			record.Time, err = parseTime(value)
		case observations.ColSoftwareVersion:
			record.SoftwareVersion = value
		case observations.ColCameraSerialNumber:
			record.CameraSerialNumber = value
		case observations.ColCameraLensSerialNumber:
			record.CameraLensSerialNumber = value
		case observations.ColStatus:
			record.Status = value
		}
		if err != nil {
			return record, errors.Wrapf(err, "column %s", name)
		}
	}

	// Per-frame exposure is derived from the totals when the export
	// omits it, matching the upstream index behavior.
	if record.ExpTime == 0 && record.NumImages > 0 && record.TotalExpTime > 0 {
		record.ExpTime = record.TotalExpTime / float64(record.NumImages)
	}

	if err := record.Validate(); err != nil {
		return record, err
	}

	return record, nil
}

func repairFieldName(name string) string {
	if strings.HasSuffix(name, badFieldNameSuffix) {
		return "M42"
	}
	return name
}

func parseTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
