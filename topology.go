package ptv

import (
	"context"
	"log/slog"

	"tidbyt.dev/ptv/model"
)

// Number of departures requested when discovering which directions
// are in service at a stop.
const DefaultHarvestSize = 5

// Discovers the directions and routes serving a stop.
type TopologyResolver struct {
	HarvestSize int
	Logger      *slog.Logger

	timetable Timetable
	cache     *MetadataCache
}

func NewTopologyResolver(timetable Timetable, cache *MetadataCache) *TopologyResolver {
	return &TopologyResolver{
		HarvestSize: DefaultHarvestSize,
		timetable:   timetable,
		cache:       cache,
	}
}

// Populates stop.Directions, from cache if possible.
//
// Otherwise, a handful of upcoming departures are fetched to find
// the direction IDs currently in service, and the metadata for each
// direction is looked up. Failures degrade to whatever subset could
// be resolved; if the departures can't be fetched at all, the stop
// ends up with no directions.
func (r *TopologyResolver) Resolve(ctx context.Context, stop *Stop) []model.Direction {
	log := loggerOrDefault(r.Logger).With("stop_id", stop.ID, "route_type", stop.RouteType.String())

	if dirs, found := r.cache.Directions(stop.ID); found {
		log.Debug("stop topology cache hit", "directions", len(dirs))
		stop.Directions = dirs
		return stop.Directions
	}

	stop.Directions = []model.Direction{}

	departures, err := r.timetable.Departures(ctx, stop.RouteType, stop.ID, 0, r.HarvestSize)
	if err != nil {
		log.Warn("harvesting directions", "error", err)
		return stop.Directions
	}

	directionIDs := []int{}
	seen := map[int]bool{}
	for _, d := range departures {
		// Zero is the PTV API's "no direction".
		if d.DirectionID == 0 || seen[d.DirectionID] {
			continue
		}
		seen[d.DirectionID] = true
		directionIDs = append(directionIDs, d.DirectionID)
	}

	for _, directionID := range directionIDs {
		infos, err := r.timetable.Directions(ctx, directionID)
		if err != nil {
			log.Warn("looking up direction", "direction_id", directionID, "error", err)
			continue
		}

		// Direction IDs are shared across route types.
		for _, info := range infos {
			if info.RouteType != stop.RouteType {
				continue
			}
			stop.mergeDirection(info.DirectionID, info.Name, info.RouteID)
		}
	}

	if len(stop.Directions) == 0 {
		log.Warn("no directions resolved")
		return stop.Directions
	}

	r.cache.PutDirections(stop.ID, stop.Directions)
	log.Debug("resolved stop topology", "directions", len(stop.Directions))

	return stop.Directions
}
