package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarnier/crewplan/internal/models"
)

// areaDeg2 converts square meters at the equator back to square degrees.
func areaDeg2(m2 float64) float64 {
	return m2 / (metersPerDegree * metersPerDegree)
}

func lengthDeg(m float64) float64 {
	return m / metersPerDegree
}

func TestQuantity(t *testing.T) {
	lawn := models.TaskObject{Kind: KindPolygon, AreaDeg2: areaDeg2(1000)}
	assert.InDelta(t, 1000, Quantity(lawn, models.UnitArea), 0.001)
	assert.Zero(t, Quantity(lawn, models.UnitLength), "a polygon has no length quantity")
	assert.Equal(t, 1.0, Quantity(lawn, models.UnitCount))

	hedge := models.TaskObject{Kind: KindLine, LengthDeg: lengthDeg(250)}
	assert.InDelta(t, 250, Quantity(hedge, models.UnitLength), 0.001)
	assert.Zero(t, Quantity(hedge, models.UnitArea))

	tree := models.TaskObject{Kind: KindPoint}
	assert.Equal(t, 1.0, Quantity(tree, models.UnitCount))
	assert.Zero(t, Quantity(tree, models.UnitArea))
}

func TestQuantityLatitudeScaling(t *testing.T) {
	equator := models.TaskObject{Kind: KindPolygon, AreaDeg2: areaDeg2(1000), Latitude: 0}
	north := models.TaskObject{Kind: KindPolygon, AreaDeg2: areaDeg2(1000), Latitude: 60}

	// cos(60°) = 0.5: the same degree area covers half the ground up north.
	assert.InDelta(t, 1000, Quantity(equator, models.UnitArea), 0.001)
	assert.InDelta(t, 500, Quantity(north, models.UnitArea), 0.001)
}

func TestHours(t *testing.T) {
	ratios := []models.ProductivityRatio{
		{TaskType: "mowing", ObjectType: "lawn", Rate: 500, Unit: models.UnitArea, Active: true},
	}
	objects := []models.TaskObject{
		{ObjectType: "lawn", Kind: KindPolygon, AreaDeg2: areaDeg2(1000)},
	}

	res := Hours("mowing", objects, ratios)
	require.True(t, res.Known())
	assert.InDelta(t, 2.0, res.Hours, 0.001) // 1000 m² / 500 m²/h
	require.Len(t, res.ByType, 1)
	assert.Equal(t, "lawn", res.ByType[0].ObjectType)
	assert.Empty(t, res.Warnings)
}

func TestHoursCountUnit(t *testing.T) {
	ratios := []models.ProductivityRatio{
		{TaskType: "pruning", ObjectType: "tree", Rate: 4, Unit: models.UnitCount, Active: true},
	}
	objects := []models.TaskObject{
		{ObjectType: "tree", Kind: KindPoint},
		{ObjectType: "tree", Kind: KindPoint},
		{ObjectType: "tree", Kind: KindPoint},
	}

	res := Hours("pruning", objects, ratios)
	assert.InDelta(t, 0.75, res.Hours, 0.001) // 3 trees / 4 per hour
}

func TestHoursUncoveredTypes(t *testing.T) {
	ratios := []models.ProductivityRatio{
		{TaskType: "mowing", ObjectType: "lawn", Rate: 500, Unit: models.UnitArea, Active: true},
	}
	objects := []models.TaskObject{
		{ObjectType: "lawn", Kind: KindPolygon, AreaDeg2: areaDeg2(500)},
		{ObjectType: "hedge", Kind: KindLine, LengthDeg: lengthDeg(100)},
	}

	res := Hours("mowing", objects, ratios)
	assert.True(t, res.Known(), "partial coverage still yields an estimate")
	assert.InDelta(t, 1.0, res.Hours, 0.001)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "hedge")
}

func TestHoursNoCoverage(t *testing.T) {
	objects := []models.TaskObject{{ObjectType: "pond", Kind: KindPolygon, AreaDeg2: areaDeg2(100)}}

	res := Hours("mowing", objects, nil)
	assert.False(t, res.Known(), "no ratio at all: the estimate is unknown, not zero")
	assert.Zero(t, res.Hours)
	assert.Len(t, res.Warnings, 1)
}

func TestHoursIgnoresInactiveAndForeignRatios(t *testing.T) {
	ratios := []models.ProductivityRatio{
		{TaskType: "mowing", ObjectType: "lawn", Rate: 500, Unit: models.UnitArea, Active: false},
		{TaskType: "weeding", ObjectType: "lawn", Rate: 100, Unit: models.UnitArea, Active: true},
	}
	objects := []models.TaskObject{{ObjectType: "lawn", Kind: KindPolygon, AreaDeg2: areaDeg2(1000)}}

	res := Hours("mowing", objects, ratios)
	assert.False(t, res.Known())
}

func TestHoursZeroObjects(t *testing.T) {
	res := Hours("mowing", nil, nil)
	assert.Zero(t, res.Hours)
	assert.False(t, res.Known())
	assert.Empty(t, res.Warnings)
}
