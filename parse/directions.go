package parse

import (
	"encoding/json"

	"github.com/pkg/errors"

	"tidbyt.dev/ptv/model"
)

type DirectionJSON struct {
	DirectionID   int    `json:"direction_id"`
	DirectionName string `json:"direction_name"`
	RouteID       int    `json:"route_id"`
	RouteType     int    `json:"route_type"`
}

type DirectionsJSON struct {
	Directions []DirectionJSON `json:"directions"`
}

func ParseDirections(data []byte) ([]model.DirectionInfo, error) {
	resp := DirectionsJSON{}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, "unmarshaling directions")
	}

	directions := make([]model.DirectionInfo, 0, len(resp.Directions))
	for _, d := range resp.Directions {
		// Entries without an ID are dropped, the rest are still
		// usable.
		if d.DirectionID == 0 {
			continue
		}
		directions = append(directions, model.DirectionInfo{
			DirectionID: d.DirectionID,
			Name:        d.DirectionName,
			RouteID:     d.RouteID,
			RouteType:   model.RouteType(d.RouteType),
		})
	}

	return directions, nil
}
