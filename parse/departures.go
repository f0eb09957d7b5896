package parse

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"tidbyt.dev/ptv/model"
)

type DepartureJSON struct {
	StopID                int     `json:"stop_id"`
	RouteID               int     `json:"route_id"`
	RunID                 int     `json:"run_id"`
	RunRef                string  `json:"run_ref"`
	DirectionID           int     `json:"direction_id"`
	ScheduledDepartureUTC *string `json:"scheduled_departure_utc"`
	EstimatedDepartureUTC *string `json:"estimated_departure_utc"`
	PlatformNumber        *string `json:"platform_number"`
}

type DeparturesJSON struct {
	Departures []DepartureJSON `json:"departures"`
}

// The identifier used to recognize the same run reported by several
// queries. run_ref supersedes the numeric run_id upstream, but not
// all responses carry it.
func (d *DepartureJSON) RunKey() string {
	if d.RunRef != "" {
		return d.RunRef
	}
	if d.RunID != 0 {
		return strconv.Itoa(d.RunID)
	}
	return ""
}

func ParseDepartures(data []byte) ([]model.Departure, error) {
	resp := DeparturesJSON{}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, "unmarshaling departures")
	}

	departures := make([]model.Departure, 0, len(resp.Departures))
	for _, d := range resp.Departures {
		dep := model.Departure{
			RunID:       d.RunKey(),
			RouteID:     d.RouteID,
			DirectionID: d.DirectionID,
		}
		if d.StopID != 0 {
			dep.StopID = strconv.Itoa(d.StopID)
		}
		if d.PlatformNumber != nil {
			dep.Platform = *d.PlatformNumber
		}

		// Malformed times are treated as missing. A departure
		// lacking both is kept here; it's up to the caller to
		// discard it.
		if d.ScheduledDepartureUTC != nil {
			dep.Scheduled, _ = ParseTime(*d.ScheduledDepartureUTC)
		}
		if d.EstimatedDepartureUTC != nil {
			dep.Estimated, _ = ParseTime(*d.EstimatedDepartureUTC)
		}

		departures = append(departures, dep)
	}

	return departures, nil
}
