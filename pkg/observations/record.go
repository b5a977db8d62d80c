package observations

import (
	"fmt"
	"strconv"
	"time"
)

// Canonical metadata column names, matching the headers of the observations
// index.
const (
	ColSequenceID             = "sequence_id"
	ColUnitID                 = "unit_id"
	ColCameraID               = "camera_id"
	ColFieldName              = "field_name"
	ColCoordinatesMountRA     = "coordinates_mount_ra"
	ColCoordinatesMountDec    = "coordinates_mount_dec"
	ColExpTime                = "exptime"
	ColNumImages              = "num_images"
	ColTotalExpTime           = "total_exptime"
	ColTime                   = "time"
	ColSoftwareVersion        = "software_version"
	ColCameraSerialNumber     = "camera_serial_number"
	ColCameraLensSerialNumber = "camera_lens_serial_number"
	ColStatus                 = "status"
)

// Columns lists every canonical column, in export order.
var Columns = []string{
	ColSequenceID,
	ColUnitID,
	ColCameraID,
	ColFieldName,
	ColCoordinatesMountRA,
	ColCoordinatesMountDec,
	ColExpTime,
	ColNumImages,
	ColTotalExpTime,
	ColTime,
	ColSoftwareVersion,
	ColCameraSerialNumber,
	ColCameraLensSerialNumber,
	ColStatus,
}

var knownColumns = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Columns))
	for _, c := range Columns {
		m[c] = struct{}{}
	}
	return m
}()

// KnownColumn reports whether name is a canonical metadata column.
func KnownColumn(name string) bool {
	_, ok := knownColumns[name]
	return ok
}

// Record is one row of the observations index, describing a single
// observation sequence.
type Record struct {
	SequenceID             string    `mapstructure:"sequence_id"`
	UnitID                 string    `mapstructure:"unit_id"`
	CameraID               string    `mapstructure:"camera_id"`
	FieldName              string    `mapstructure:"field_name"`
	CoordinatesMountRA     float64   `mapstructure:"coordinates_mount_ra"`
	CoordinatesMountDec    float64   `mapstructure:"coordinates_mount_dec"`
	ExpTime                float64   `mapstructure:"exptime"`
	NumImages              int       `mapstructure:"num_images"`
	TotalExpTime           float64   `mapstructure:"total_exptime"`
	Time                   time.Time `mapstructure:"time"`
	SoftwareVersion        string    `mapstructure:"software_version"`
	CameraSerialNumber     string    `mapstructure:"camera_serial_number"`
	CameraLensSerialNumber string    `mapstructure:"camera_lens_serial_number"`

	// Status comes from upstream processing state. It is excluded from
	// search results unless explicitly requested.
	Status string `mapstructure:"status"`
}

// Validate checks the construction-time invariants: a parseable sequence id,
// a non-negative image count, and a UTC start time.
//
// TotalExpTime is carried as supplied by upstream telemetry; it is not
// checked against ExpTime*NumImages.
func (r *Record) Validate() error {
	if _, err := ParseSequenceID(r.SequenceID); err != nil {
		return err
	}
	if r.NumImages < 0 {
		return fmt.Errorf("record %s: num_images must be >= 0, not %d", r.SequenceID, r.NumImages)
	}
	if r.Time.IsZero() {
		return fmt.Errorf("record %s: time is required", r.SequenceID)
	}
	if r.Time.Location() != time.UTC {
		return fmt.Errorf("record %s: time must be UTC", r.SequenceID)
	}
	return nil
}

// ParsedSequenceID returns the structured form of the record's sequence id.
func (r *Record) ParsedSequenceID() (SequenceID, error) {
	return ParseSequenceID(r.SequenceID)
}

// ColumnValue returns the record's value for a canonical column, formatted
// as a string, and whether the column is known.
func (r *Record) ColumnValue(name string) (string, bool) {
	switch name {
	case ColSequenceID:
		return r.SequenceID, true
	case ColUnitID:
		return r.UnitID, true
	case ColCameraID:
		return r.CameraID, true
	case ColFieldName:
		return r.FieldName, true
	case ColCoordinatesMountRA:
		return formatFloat(r.CoordinatesMountRA), true
	case ColCoordinatesMountDec:
		return formatFloat(r.CoordinatesMountDec), true
	case ColExpTime:
		return formatFloat(r.ExpTime), true
	case ColNumImages:
		return strconv.Itoa(r.NumImages), true
	case ColTotalExpTime:
		return formatFloat(r.TotalExpTime), true
	case ColTime:
		if r.Time.IsZero() {
			return "", true
		}
		return r.Time.UTC().Format(time.RFC3339), true
	case ColSoftwareVersion:
		return r.SoftwareVersion, true
	case ColCameraSerialNumber:
		return r.CameraSerialNumber, true
	case ColCameraLensSerialNumber:
		return r.CameraLensSerialNumber, true
	case ColStatus:
		return r.Status, true
	default:
		return "", false
	}
}

// Meta returns the record as a column-name-to-value map. Columns with no
// value (empty strings, the zero time) are omitted; numeric zeros are kept,
// since 0.0 is a valid coordinate.
func (r *Record) Meta() map[string]string {
	meta := make(map[string]string)
	for _, col := range Columns {
		if value, _ := r.ColumnValue(col); value != "" {
			meta[col] = value
		}
	}
	return meta
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
