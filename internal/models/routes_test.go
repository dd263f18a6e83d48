package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoBranchEntity() RouteEntity {
	return RouteEntity{
		ID:   "entity-1",
		Info: NewRouteInfo("1_100208", "1", "48", "University District - Loyal Heights", "", 3, "008080", "FFFFFF"),
		Branches: []Branch{
			{
				Headsign: "Loyal Heights",
				Segments: []Polyline{{Points: "abc", Length: 3}},
				Stops: []StopRecord{
					{ID: "s1", Name: "1st Ave & Pine St"},
					{ID: "s2", Name: "3rd Ave & Pike St"},
				},
			},
			{
				Headsign: "University District",
				Segments: []Polyline{{Points: "def", Length: 3}},
				Stops: []StopRecord{
					{ID: "s3", Name: "Campus Pkwy & University Way"},
				},
			},
		},
	}
}

func TestBranchIndexForStop(t *testing.T) {
	entity := twoBranchEntity()

	assert.Equal(t, 0, entity.BranchIndexForStop("s1"))
	assert.Equal(t, 0, entity.BranchIndexForStop("s2"))
	assert.Equal(t, 1, entity.BranchIndexForStop("s3"))
	assert.Equal(t, -1, entity.BranchIndexForStop("missing"))
}

func TestBranchIndexForStopFirstMatchWins(t *testing.T) {
	entity := twoBranchEntity()
	// s3 also appears in branch 0; the first branch in provider order wins.
	entity.Branches[0].Stops = append(entity.Branches[0].Stops, StopRecord{ID: "s3"})

	assert.Equal(t, 0, entity.BranchIndexForStop("s3"))
}

func TestSegmentCount(t *testing.T) {
	entity := twoBranchEntity()
	assert.Equal(t, 2, entity.SegmentCount())

	entity.Branches = nil
	assert.Equal(t, 0, entity.SegmentCount())
}

func TestSegmentIndexBound(t *testing.T) {
	entity := twoBranchEntity()
	assert.Equal(t, 2, entity.SegmentIndexBound())

	// Branches without geometry are still selectable by index.
	for i := range entity.Branches {
		entity.Branches[i].Segments = nil
	}
	assert.Equal(t, 2, entity.SegmentIndexBound())

	entity.Branches = nil
	assert.Equal(t, 0, entity.SegmentIndexBound())
}

func TestRouteInfoCreation(t *testing.T) {
	info := NewRouteInfo("1_100208", "1", "48", "University District - Loyal Heights", "Frequent service", 3, "008080", "FFFFFF")

	assert.Equal(t, "1_100208", info.ID)
	assert.Equal(t, "1", info.AgencyID)
	assert.Equal(t, "48", info.ShortName)
	assert.Equal(t, "University District - Loyal Heights", info.LongName)
	assert.Equal(t, "Frequent service", info.Description)
	assert.Equal(t, RouteType(3), info.Type)
	assert.Equal(t, "008080", info.Color)
	assert.Equal(t, "FFFFFF", info.TextColor)
}
