package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"tidbyt.dev/ptv/model"
)

type StopCSV struct {
	ID        string `csv:"stop_id"`
	RouteType string `csv:"route_type"`
	Name      string `csv:"stop_name"`
}

// Parses a CSV file listing stops to display. Route types can be
// given by name or PTV number. The same stop may appear once per
// route type, since e.g. a tram and bus stop can share an ID.
func ParseStops(data io.Reader) ([]model.StopRef, error) {
	// LazyCSVReader to survive sloppy quoting in hand edited
	// files. Spreadsheet exports tend to add a BOM.
	stopCsv := []*StopCSV{}
	err := gocsv.UnmarshalCSV(gocsv.LazyCSVReader(bom.NewReader(data)), &stopCsv)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling stops csv: %w", err)
	}

	type stopKey struct {
		id        string
		routeType model.RouteType
	}
	seen := map[stopKey]bool{}

	stops := []model.StopRef{}
	for i, st := range stopCsv {
		if st.ID == "" {
			return nil, fmt.Errorf("empty stop_id (row %d)", i+1)
		}

		if st.RouteType == "" {
			return nil, fmt.Errorf("stop_id '%s' has no route_type", st.ID)
		}
		routeType, err := model.ParseRouteType(st.RouteType)
		if err != nil {
			return nil, fmt.Errorf("stop_id '%s' has invalid route_type: %w", st.ID, err)
		}

		key := stopKey{st.ID, routeType}
		if seen[key] {
			return nil, fmt.Errorf("repeated stop_id '%s' for route_type %s", st.ID, routeType)
		}
		seen[key] = true

		stops = append(stops, model.StopRef{
			ID:        st.ID,
			RouteType: routeType,
			Name:      st.Name,
		})
	}

	return stops, nil
}
