package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgarnier/crewplan/internal/estimate"
	"github.com/mgarnier/crewplan/internal/models"
)

// ParseObject parses an inventory object reference of the form
//
//	ref:type:kind[:measure[:lat]]
//
// where kind is point, line or polygon. The measure is meaningless for
// points, degrees of length for lines and square degrees for polygons, as
// stored in the source inventory; lat is the centroid latitude used for the
// meter conversion (0 when omitted, i.e. equator scaling).
func ParseObject(input string) (models.TaskObject, error) {
	parts := strings.Split(strings.TrimSpace(input), ":")
	if len(parts) < 3 {
		return models.TaskObject{}, fmt.Errorf("unrecognized object %q (expected ref:type:kind[:measure[:lat]])", input)
	}

	obj := models.TaskObject{
		ObjectRef:  parts[0],
		ObjectType: parts[1],
		Kind:       strings.ToLower(parts[2]),
	}
	if obj.ObjectRef == "" || obj.ObjectType == "" {
		return models.TaskObject{}, fmt.Errorf("object %q: ref and type are required", input)
	}

	switch obj.Kind {
	case estimate.KindPoint, estimate.KindLine, estimate.KindPolygon:
	default:
		return models.TaskObject{}, fmt.Errorf("object %q: kind must be point, line or polygon", input)
	}

	if len(parts) > 3 && parts[3] != "" {
		measure, err := strconv.ParseFloat(parts[3], 64)
		if err != nil || measure < 0 {
			return models.TaskObject{}, fmt.Errorf("object %q: invalid measure %q", input, parts[3])
		}
		switch obj.Kind {
		case estimate.KindLine:
			obj.LengthDeg = measure
		case estimate.KindPolygon:
			obj.AreaDeg2 = measure
		}
	}

	if len(parts) > 4 && parts[4] != "" {
		lat, err := strconv.ParseFloat(parts[4], 64)
		if err != nil || lat < -90 || lat > 90 {
			return models.TaskObject{}, fmt.Errorf("object %q: invalid latitude %q", input, parts[4])
		}
		obj.Latitude = lat
	}

	return obj, nil
}
