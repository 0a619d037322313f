// Package estimate converts a task's linked inventory objects into an
// estimated-hours figure using the productivity-ratio reference table.
// The computation is pure: same objects + same ratios = same estimate.
package estimate

import (
	"fmt"
	"math"
	"sort"

	"github.com/mgarnier/crewplan/internal/models"
)

// Object kinds. The set is closed: inventory geometry arrives as one of
// these three shapes.
const (
	KindPoint   = "point"
	KindLine    = "line"
	KindPolygon = "polygon"
)

// metersPerDegree is the spherical approximation at the equator. Longitude
// spacing shrinks with cos(latitude); the conversion applies that factor at
// each object's own centroid latitude.
const metersPerDegree = 111000.0

// Quantity returns the object's size in the ratio's unit: object count for
// COUNT, meters for LENGTH, square meters for AREA. Objects whose kind
// cannot produce the requested unit contribute zero.
func Quantity(o models.TaskObject, unit string) float64 {
	cosLat := math.Cos(o.Latitude * math.Pi / 180)
	switch unit {
	case models.UnitCount:
		return 1
	case models.UnitLength:
		if o.Kind != KindLine {
			return 0
		}
		return o.LengthDeg * metersPerDegree * cosLat
	case models.UnitArea:
		if o.Kind != KindPolygon {
			return 0
		}
		return o.AreaDeg2 * metersPerDegree * metersPerDegree * cosLat
	default:
		return 0
	}
}

// Result is the outcome of one estimation pass.
type Result struct {
	Hours    float64        // total, rounded to 2 decimals
	ByType   []GroupHours   // per object-type breakdown, sorted by type
	Warnings []string       // object types with no covering ratio
	Covered  map[string]int // object count per covered type
}

// GroupHours is the contribution of one object-type group.
type GroupHours struct {
	ObjectType string
	Quantity   float64
	Rate       float64
	Unit       string
	Hours      float64
}

// Hours computes the estimate for taskType over objects, given the active
// ratios. Object types with no ratio are recorded as warnings, never errors:
// a partial estimate beats no estimate. Grouping is sorted by object type so
// the output is deterministic.
func Hours(taskType string, objects []models.TaskObject, ratios []models.ProductivityRatio) Result {
	res := Result{Covered: map[string]int{}}

	byRatio := map[string]models.ProductivityRatio{}
	for _, r := range ratios {
		if r.Active && r.TaskType == taskType && r.Rate > 0 {
			byRatio[r.ObjectType] = r
		}
	}

	groups := map[string][]models.TaskObject{}
	for _, o := range objects {
		groups[o.ObjectType] = append(groups[o.ObjectType], o)
	}

	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Strings(types)

	total := 0.0
	for _, objType := range types {
		ratio, ok := byRatio[objType]
		if !ok {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("no productivity ratio for (%s, %s); %d object(s) not estimated",
					taskType, objType, len(groups[objType])))
			continue
		}

		quantity := 0.0
		for _, o := range groups[objType] {
			quantity += Quantity(o, ratio.Unit)
		}

		hours := quantity / ratio.Rate
		total += hours
		res.Covered[objType] = len(groups[objType])
		res.ByType = append(res.ByType, GroupHours{
			ObjectType: objType,
			Quantity:   round2(quantity),
			Rate:       ratio.Rate,
			Unit:       ratio.Unit,
			Hours:      round2(hours),
		})
	}

	res.Hours = round2(total)
	return res
}

// Known reports whether at least one linked object type had a covering
// ratio; with no coverage at all the estimate is unknown, not zero.
func (r Result) Known() bool {
	return len(r.Covered) > 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
