package observations

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// pathMatcher matches the bucket layout for images taken by a unit,
// including the optional legacy field name:
//
//	[gs://bucket/]PANxxx[/Field Name]/cameraid/SEQTIME/IMGTIME[.ext]
var pathMatcher = regexp.MustCompile(
	`^(?:.*?/)??` +
		`(?P<unit_id>PAN\d{3})` +
		`(?:/(?P<field_name>.*?))?` +
		`/(?P<camera_id>[a-gA-G0-9]{6})` +
		`/(?P<sequence_time>\d{8}T\d{6})` +
		`/(?P<image_time>\d{8}T\d{6})` +
		`(?P<ext>\..*)?$`)

// PathInfo holds the identifying parts of one image's object key.
type PathInfo struct {
	UnitID       string
	CameraID     string
	FieldName    string
	SequenceTime time.Time
	ImageTime    time.Time
}

// ParsePath parses an image object key or URL into its parts.
func ParsePath(p string) (PathInfo, error) {
	match := pathMatcher.FindStringSubmatch(p)
	if match == nil {
		return PathInfo{}, fmt.Errorf("invalid image path: %q", p)
	}

	parts := make(map[string]string)
	for i, name := range pathMatcher.SubexpNames() {
		if name != "" {
			parts[name] = match[i]
		}
	}

	seqTime, err := time.ParseInLocation(FlatTimeFormat, parts["sequence_time"], time.UTC)
	if err != nil {
		return PathInfo{}, fmt.Errorf("invalid image path %q: %w", p, err)
	}
	imgTime, err := time.ParseInLocation(FlatTimeFormat, parts["image_time"], time.UTC)
	if err != nil {
		return PathInfo{}, fmt.Errorf("invalid image path %q: %w", p, err)
	}

	return PathInfo{
		UnitID:       parts["unit_id"],
		CameraID:     parts["camera_id"],
		FieldName:    parts["field_name"],
		SequenceTime: seqTime,
		ImageTime:    imgTime,
	}, nil
}

// SequenceID returns the observation sequence identifier for this image.
func (p PathInfo) SequenceID() SequenceID {
	return SequenceID{UnitID: p.UnitID, CameraID: p.CameraID, Time: p.SequenceTime}
}

// ImageID returns the image identifier, <unit>_<camera>_<image time>.
func (p PathInfo) ImageID() string {
	return strings.Join([]string{p.UnitID, p.CameraID, FlattenTime(p.ImageTime)}, "_")
}

// FullID returns unit, camera, sequence time, and image time joined with
// the given separator.
func (p PathInfo) FullID(sep string) string {
	return strings.Join([]string{
		p.UnitID,
		p.CameraID,
		FlattenTime(p.SequenceTime),
		FlattenTime(p.ImageTime),
	}, sep)
}

// AsPath renders the canonical local layout for this image, rooted at base,
// with the given extension (including the dot) appended if non-empty.
func (p PathInfo) AsPath(base string, ext string) string {
	name := FlattenTime(p.ImageTime)
	if ext != "" {
		name += ext
	}

	full := path.Join(p.UnitID, p.CameraID, FlattenTime(p.SequenceTime), name)
	if base != "" {
		full = path.Join(base, full)
	}
	return full
}
