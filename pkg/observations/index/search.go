package index

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/panoptes/panoptes-data-go/pkg/observations"
)

// DefaultRadius is the coordinate search radius, in degrees, used when a
// center is given without one.
const DefaultRadius = 10.0

// Criteria are the search filters. All fields are optional and combine
// with logical AND.
type Criteria struct {
	// ByName matches field_name, case-insensitively, as a substring
	// (or exactly; an exact match is a substring match).
	ByName string

	// RA and Dec are the center, in degrees, of a square box search over
	// the mount coordinates. Both must be set together.
	RA  *float64
	Dec *float64

	// Radius is half the side length of the coordinate box, in degrees.
	// Zero means DefaultRadius.
	Radius float64

	// UnitID matches unit_id exactly.
	UnitID string

	// StartDate and EndDate are inclusive bounds on the sequence start
	// time. A zero value leaves that side unbounded.
	StartDate time.Time
	EndDate   time.Time

	// MinNumImages is an inclusive lower bound on num_images.
	MinNumImages int

	// Status filters on the status column. Setting it is the explicit
	// opt-in required to filter on and retrieve status.
	Status string

	// IncludeStatus retains the status column in results without
	// filtering on it.
	IncludeStatus bool

	// Extra matches any other known column by exact equality. An
	// unknown column name is a *QueryError.
	Extra map[string]string
}

func (c Criteria) wantsStatus() bool {
	if c.Status != "" || c.IncludeStatus {
		return true
	}
	_, ok := c.Extra[observations.ColStatus]
	return ok
}

// Validate rejects criteria referencing columns absent from the index and
// malformed coordinate boxes.
func (c Criteria) Validate() error {
	if (c.RA == nil) != (c.Dec == nil) {
		return observations.NewQueryError("", "ra and dec must be given together")
	}
	if c.Radius < 0 {
		return observations.NewQueryError("", "radius must be >= 0")
	}
	for column := range c.Extra {
		if !observations.KnownColumn(column) {
			return observations.NewQueryError(column, "not present in the observations index")
		}
	}
	return nil
}

// Search returns the records matching the criteria, sorted by start time
// and then sequence id so that repeated queries against an unchanged
// snapshot return rows in the same order.
//
// Well-formed criteria with no matches return an empty slice, not an
// error. The status column is cleared from results unless the criteria
// explicitly request it.
func Search(ctx context.Context, provider Provider, criteria Criteria) ([]observations.Record, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	records, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]observations.Record, 0)
	for _, record := range records {
		if matches(record, criteria) {
			if !criteria.wantsStatus() {
				record.Status = ""
			}
			results = append(results, record)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].Time.Equal(results[j].Time) {
			return results[i].Time.Before(results[j].Time)
		}
		return results[i].SequenceID < results[j].SequenceID
	})

	return results, nil
}

func matches(record observations.Record, criteria Criteria) bool {
	if criteria.ByName != "" &&
		!strings.Contains(strings.ToLower(record.FieldName), strings.ToLower(criteria.ByName)) {
		return false
	}

	if criteria.UnitID != "" && !strings.EqualFold(record.UnitID, criteria.UnitID) {
		return false
	}

	if criteria.RA != nil && criteria.Dec != nil {
		radius := criteria.Radius
		if radius == 0 {
			radius = DefaultRadius
		}
		if record.CoordinatesMountRA < *criteria.RA-radius ||
			record.CoordinatesMountRA > *criteria.RA+radius {
			return false
		}
		if record.CoordinatesMountDec < *criteria.Dec-radius ||
			record.CoordinatesMountDec > *criteria.Dec+radius {
			return false
		}
	}

	if !criteria.StartDate.IsZero() && record.Time.Before(criteria.StartDate) {
		return false
	}
	if !criteria.EndDate.IsZero() && record.Time.After(criteria.EndDate) {
		return false
	}

	if record.NumImages < criteria.MinNumImages {
		return false
	}

	if criteria.Status != "" && record.Status != criteria.Status {
		return false
	}

	for column, want := range criteria.Extra {
		got, _ := record.ColumnValue(column)
		if got != want {
			return false
		}
	}

	return true
}
