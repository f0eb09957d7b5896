package parse

import (
	"encoding/json"

	"github.com/pkg/errors"

	"tidbyt.dev/ptv/model"
)

type RouteJSON struct {
	RouteID     int     `json:"route_id"`
	RouteType   int     `json:"route_type"`
	RouteName   *string `json:"route_name"`
	RouteNumber *string `json:"route_number"`
}

type RouteResponseJSON struct {
	Route *RouteJSON `json:"route"`
}

// Parses a /v3/routes/{id} response. Name and number are both
// optional; train lines typically have no number.
func ParseRoute(data []byte) (model.RouteIdentity, error) {
	resp := RouteResponseJSON{}
	if err := json.Unmarshal(data, &resp); err != nil {
		return model.RouteIdentity{}, errors.Wrap(err, "unmarshaling route")
	}
	if resp.Route == nil {
		return model.RouteIdentity{}, errors.New("response has no route")
	}

	route := model.RouteIdentity{RouteID: resp.Route.RouteID}
	if resp.Route.RouteName != nil {
		route.Name = *resp.Route.RouteName
	}
	if resp.Route.RouteNumber != nil {
		route.Number = *resp.Route.RouteNumber
	}

	return route, nil
}
