package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Holds all external facing types and constants.

type RouteType int

// Route types as numbered by the PTV Timetable API.
const (
	RouteTypeTrain    RouteType = 0
	RouteTypeTram     RouteType = 1
	RouteTypeBus      RouteType = 2
	RouteTypeVLine    RouteType = 3
	RouteTypeNightBus RouteType = 4
)

var routeTypeNames = map[RouteType]string{
	RouteTypeTrain:    "train",
	RouteTypeTram:     "tram",
	RouteTypeBus:      "bus",
	RouteTypeVLine:    "vline",
	RouteTypeNightBus: "nightbus",
}

func (rt RouteType) String() string {
	if name, found := routeTypeNames[rt]; found {
		return name
	}
	return strconv.Itoa(int(rt))
}

// Parses a route type given either by name ("tram") or by its PTV
// number ("1").
func ParseRouteType(s string) (RouteType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for rt, name := range routeTypeNames {
		if name == s {
			return rt, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown route type '%s'", s)
	}
	if _, found := routeTypeNames[RouteType(n)]; !found {
		return 0, fmt.Errorf("unknown route type %d", n)
	}
	return RouteType(n), nil
}

// One direction of travel through a stop, with all routes observed
// serving it there.
type Direction struct {
	ID       int    `json:"direction_id"`
	Name     string `json:"direction_name"`
	RouteIDs []int  `json:"route_ids"`
}

// HasRoute reports whether routeID is already recorded for this
// direction.
func (d *Direction) HasRoute(routeID int) bool {
	for _, id := range d.RouteIDs {
		if id == routeID {
			return true
		}
	}
	return false
}

// Direction metadata as returned upstream. A direction ID is shared
// by every route travelling that way, possibly across route types.
type DirectionInfo struct {
	DirectionID int
	Name        string
	RouteID     int
	RouteType   RouteType
}

// Display metadata for a route. Number may be empty, e.g. for
// train lines.
type RouteIdentity struct {
	RouteID int    `json:"-"`
	Name    string `json:"route_name"`
	Number  string `json:"route_number"`
}

// A vehicle departing from a stop.
type Departure struct {
	RunID       string
	RouteID     int
	DirectionID int
	StopID      string
	Platform    string
	Scheduled   time.Time
	Estimated   time.Time
}

// The estimated departure time if known, otherwise the scheduled
// one. Returns false if neither is set.
func (d *Departure) EffectiveTime() (time.Time, bool) {
	if !d.Estimated.IsZero() {
		return d.Estimated, true
	}
	if !d.Scheduled.IsZero() {
		return d.Scheduled, true
	}
	return time.Time{}, false
}

// Departures for a single direction at a stop, reduced for display.
type DirectionView struct {
	// "city" for city-bound directions, otherwise the direction
	// name.
	Label         string
	DirectionID   int
	DirectionName string
	City          bool
	RouteID       int
	RouteNumber   string

	// Countdowns formatted as MM:SS. "00:00" means departing now.
	Countdowns []string

	// Departure times in the display timezone, one per countdown.
	Times []time.Time
}

// A stop to display, as configured.
type StopRef struct {
	ID        string
	RouteType RouteType
	Name      string
}
