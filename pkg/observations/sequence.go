package observations

import (
	"fmt"
	"strings"
	"time"
)

// FlatTimeFormat is the compact UTC timestamp used inside sequence and
// image identifiers, e.g. 20180824T035917.
const FlatTimeFormat = "20060102T150405"

// SequenceID identifies one observation sequence: a named, time-bounded set
// of exposures taken by one unit. The canonical string form is
// <unit_id>_<camera_id>_<flattened start time>.
type SequenceID struct {
	UnitID   string
	CameraID string
	Time     time.Time
}

// ParseSequenceID parses the canonical underscore-separated form.
func ParseSequenceID(s string) (SequenceID, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return SequenceID{}, fmt.Errorf("invalid sequence id %q: want <unit>_<camera>_<time>", s)
	}

	t, err := time.ParseInLocation(FlatTimeFormat, parts[2], time.UTC)
	if err != nil {
		return SequenceID{}, fmt.Errorf("invalid sequence id %q: bad time component: %w", s, err)
	}

	if parts[0] == "" || parts[1] == "" {
		return SequenceID{}, fmt.Errorf("invalid sequence id %q: empty component", s)
	}

	return SequenceID{UnitID: parts[0], CameraID: parts[1], Time: t}, nil
}

// String returns the canonical underscore-separated form.
func (s SequenceID) String() string {
	return strings.Join([]string{s.UnitID, s.CameraID, FlattenTime(s.Time)}, "_")
}

// Prefix returns the object-key prefix for this sequence's images,
// slash-separated with a trailing slash.
func (s SequenceID) Prefix() string {
	return strings.Join([]string{s.UnitID, s.CameraID, FlattenTime(s.Time)}, "/") + "/"
}

// FlattenTime formats a time in the compact identifier form, in UTC.
func FlattenTime(t time.Time) string {
	return t.UTC().Format(FlatTimeFormat)
}
