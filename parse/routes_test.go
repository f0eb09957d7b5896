package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/ptv/model"
)

func TestParseRoute(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		route   model.RouteIdentity
		err     bool
	}{
		{
			"tram",
			`{"route": {"route_id": 1881, "route_type": 1, "route_name": "Melbourne University - East Malvern", "route_number": "5"}}`,
			model.RouteIdentity{RouteID: 1881, Name: "Melbourne University - East Malvern", Number: "5"},
			false,
		},

		{
			"train_without_number",
			`{"route": {"route_id": 7, "route_type": 0, "route_name": "Glen Waverley", "route_number": ""}}`,
			model.RouteIdentity{RouteID: 7, Name: "Glen Waverley"},
			false,
		},

		{
			"null_fields",
			`{"route": {"route_id": 7, "route_name": null, "route_number": null}}`,
			model.RouteIdentity{RouteID: 7},
			false,
		},

		{
			"no_route",
			`{"status": {"version": "3.0", "health": 1}}`,
			model.RouteIdentity{},
			true,
		},

		{
			"malformed",
			`<html>`,
			model.RouteIdentity{},
			true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			route, err := ParseRoute([]byte(tc.content))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.route, route)
		})
	}
}
