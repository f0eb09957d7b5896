package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/ptv/model"
)

func TestParseStops(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		stops   []model.StopRef
		err     bool
	}{
		{
			"minimal",
			`
stop_id,route_type
2504,tram`,
			[]model.StopRef{{ID: "2504", RouteType: model.RouteTypeTram}},
			false,
		},

		{
			"names_and_numbers",
			`
stop_id,route_type,stop_name
2504,1,Glenferrie Rd/Dandenong Rd
1071,train,Flinders Street
1071, Bus ,Flinders Street bus`,
			[]model.StopRef{
				{ID: "2504", RouteType: model.RouteTypeTram, Name: "Glenferrie Rd/Dandenong Rd"},
				{ID: "1071", RouteType: model.RouteTypeTrain, Name: "Flinders Street"},
				{ID: "1071", RouteType: model.RouteTypeBus, Name: "Flinders Street bus"},
			},
			false,
		},

		{
			"byte_order_mark",
			"\xef\xbb\xbfstop_id,route_type\n2504,tram",
			[]model.StopRef{{ID: "2504", RouteType: model.RouteTypeTram}},
			false,
		},

		{
			"sloppy_quotes",
			`
stop_id,route_type,stop_name
2504,tram,Glenferrie Rd "North"`,
			[]model.StopRef{{ID: "2504", RouteType: model.RouteTypeTram, Name: `Glenferrie Rd "North"`}},
			false,
		},

		{
			"missing_stop_id",
			`
stop_id,route_type
,tram`,
			nil,
			true,
		},

		{
			"missing_route_type",
			`
stop_id,route_type
2504,`,
			nil,
			true,
		},

		{
			"invalid_route_type",
			`
stop_id,route_type
2504,hovercraft`,
			nil,
			true,
		},

		{
			"repeated_stop",
			`
stop_id,route_type
2504,tram
2504,1`,
			nil,
			true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			stops, err := ParseStops(bytes.NewBufferString(tc.content))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.stops, stops)
		})
	}
}
