package ptv

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"tidbyt.dev/ptv/model"
)

const (
	DefaultMaxCountdowns = 2

	CityLabel        = "city"
	UnknownDirection = "Unknown direction"

	// Shown when a route has no number, or it couldn't be looked
	// up.
	RouteNumberPlaceholder = "?"

	// Countdown of a departure that's due.
	CountdownNow = "00:00"
)

var DefaultCityKeywords = []string{
	"City",
	"Melbourne University",
	"Melbourne CBD",
	"Domain Interchange",
}

// Turns aggregated departures into one view per direction.
type Reducer struct {
	// Directions with names containing any of these
	// (case-insensitively) are city-bound.
	CityKeywords  []string
	MaxCountdowns int

	// Timezone of DirectionView.Times.
	Location *time.Location

	routes *RouteResolver
}

func NewReducer(routes *RouteResolver) *Reducer {
	return &Reducer{
		CityKeywords:  DefaultCityKeywords,
		MaxCountdowns: DefaultMaxCountdowns,
		Location:      time.UTC,
		routes:        routes,
	}
}

func (r *Reducer) IsCityBound(directionName string) bool {
	name := strings.ToLower(directionName)
	for _, keyword := range r.CityKeywords {
		if keyword != "" && strings.Contains(name, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Time remaining until t, as MM:SS. Rounded down to whole seconds,
// and never negative.
func Countdown(t time.Time, now time.Time) string {
	delta := t.Sub(now)
	if delta < 0 {
		delta = 0
	}
	seconds := int64(delta / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Groups departures by direction. Views are ordered by their soonest
// departure.
func (r *Reducer) Reduce(
	ctx context.Context,
	stop *Stop,
	departures []model.Departure,
	now time.Time,
) []model.DirectionView {

	groups := map[int][]model.Departure{}
	order := []int{}
	for _, d := range departures {
		if _, ok := d.EffectiveTime(); !ok {
			continue
		}
		if _, found := groups[d.DirectionID]; !found {
			order = append(order, d.DirectionID)
		}
		groups[d.DirectionID] = append(groups[d.DirectionID], d)
	}

	maxCountdowns := r.MaxCountdowns
	if maxCountdowns <= 0 {
		maxCountdowns = DefaultMaxCountdowns
	}

	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	views := make([]model.DirectionView, 0, len(order))
	for _, directionID := range order {
		group := groups[directionID]
		sortDepartures(group)

		view := model.DirectionView{
			DirectionID:   directionID,
			DirectionName: UnknownDirection,
			Countdowns:    []string{},
			Times:         []time.Time{},
		}
		if direction, found := stop.Direction(directionID); found {
			view.DirectionName = direction.Name
		}

		view.Label = view.DirectionName
		if r.IsCityBound(view.DirectionName) {
			view.City = true
			view.Label = CityLabel
		}

		view.RouteID = group[0].RouteID
		view.RouteNumber = RouteNumberPlaceholder
		if route := r.routes.Resolve(ctx, stop, view.RouteID); route.Number != "" {
			view.RouteNumber = route.Number
		}

		for i := 0; i < len(group) && i < maxCountdowns; i++ {
			t, _ := group[i].EffectiveTime()
			view.Countdowns = append(view.Countdowns, Countdown(t, now))
			view.Times = append(view.Times, t.In(loc))
		}

		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Times[0].Equal(views[j].Times[0]) {
			return views[i].DirectionID < views[j].DirectionID
		}
		return views[i].Times[0].Before(views[j].Times[0])
	})

	return views
}
