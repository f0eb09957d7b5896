package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/ptv/model"
)

func TestParseDirections(t *testing.T) {
	for _, tc := range []struct {
		name       string
		content    string
		directions []model.DirectionInfo
		err        bool
	}{
		{
			"shared_across_route_types",
			`{"directions": [
  {"direction_id": 1, "direction_name": "City (Flinders Street)", "route_id": 6, "route_type": 0, "route_direction_description": "..."},
  {"direction_id": 1, "direction_name": "Melbourne University", "route_id": 1881, "route_type": 1}
], "status": {"version": "3.0", "health": 1}}`,
			[]model.DirectionInfo{
				{DirectionID: 1, Name: "City (Flinders Street)", RouteID: 6, RouteType: model.RouteTypeTrain},
				{DirectionID: 1, Name: "Melbourne University", RouteID: 1881, RouteType: model.RouteTypeTram},
			},
			false,
		},

		{
			"empty",
			`{"directions": []}`,
			[]model.DirectionInfo{},
			false,
		},

		{
			"missing_id",
			`{"directions": [{"direction_name": "City", "route_id": 6, "route_type": 0}]}`,
			[]model.DirectionInfo{},
			false,
		},

		{
			"zero_id_among_valid",
			`{"directions": [
  {"direction_id": 0, "direction_name": "Nowhere", "route_id": 6, "route_type": 0},
  {"direction_id": 1, "direction_name": "City (Flinders Street)", "route_id": 6, "route_type": 0}
]}`,
			[]model.DirectionInfo{
				{DirectionID: 1, Name: "City (Flinders Street)", RouteID: 6, RouteType: model.RouteTypeTrain},
			},
			false,
		},

		{
			"malformed",
			`{"directions": "nope"}`,
			nil,
			true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			directions, err := ParseDirections([]byte(tc.content))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.directions, directions)
		})
	}
}
