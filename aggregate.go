package ptv

import (
	"context"
	"log/slog"
	"sort"

	"tidbyt.dev/ptv/model"
)

const DefaultPerRouteLimit = 2

// Collects upcoming departures across all routes serving a stop.
type Aggregator struct {
	Logger *slog.Logger

	timetable Timetable
	topology  *TopologyResolver
}

func NewAggregator(timetable Timetable, topology *TopologyResolver) *Aggregator {
	return &Aggregator{
		timetable: timetable,
		topology:  topology,
	}
}

// Fetches up to perRouteLimit departures for every (direction,
// route) pair at the stop, and returns them ordered by effective
// time. A run reported by several queries is included once.
//
// If the stop has no directions yet, its topology is resolved
// first. Pairs that fail to load contribute nothing.
func (a *Aggregator) Aggregate(ctx context.Context, stop *Stop, perRouteLimit int) []model.Departure {
	log := loggerOrDefault(a.Logger).With("stop_id", stop.ID, "route_type", stop.RouteType.String())

	if perRouteLimit <= 0 {
		perRouteLimit = DefaultPerRouteLimit
	}

	if len(stop.Directions) == 0 {
		a.topology.Resolve(ctx, stop)
	}

	departures := []model.Departure{}
	seen := map[string]bool{}

	for _, direction := range stop.Directions {
		for _, routeID := range direction.RouteIDs {
			deps, err := a.timetable.Departures(ctx, stop.RouteType, stop.ID, routeID, perRouteLimit)
			if err != nil {
				log.Warn(
					"getting departures",
					"direction_id", direction.ID,
					"route_id", routeID,
					"error", err,
				)
				continue
			}

			for _, d := range deps {
				// A run is claimed by its first occurrence, even
				// when that occurrence has no time.
				if d.RunID != "" {
					if seen[d.RunID] {
						continue
					}
					seen[d.RunID] = true
				}
				if _, ok := d.EffectiveTime(); !ok {
					continue
				}
				departures = append(departures, d)
			}
		}
	}

	sortDepartures(departures)

	return departures
}

func sortDepartures(departures []model.Departure) {
	sort.SliceStable(departures, func(i, j int) bool {
		ti, _ := departures[i].EffectiveTime()
		tj, _ := departures[j].EffectiveTime()
		return ti.Before(tj)
	})
}
