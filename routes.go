package ptv

import (
	"context"
	"log/slog"
	"time"

	"tidbyt.dev/ptv/model"
)

// How long a failed lookup is remembered by a Stop before the
// timetable is asked again.
const DefaultRouteFailureTTL = 5 * time.Minute

// Resolves route IDs to display names and numbers. Lookups go
// through the Stop's in-memory cache, then the MetadataCache, then
// the timetable.
type RouteResolver struct {
	// Zero disables caching of failed lookups.
	FailureTTL time.Duration
	Logger     *slog.Logger

	timetable Timetable
	cache     *MetadataCache
}

func NewRouteResolver(timetable Timetable, cache *MetadataCache) *RouteResolver {
	return &RouteResolver{
		FailureTTL: DefaultRouteFailureTTL,
		timetable:  timetable,
		cache:      cache,
	}
}

// Returns the identity of a route. If it can't be looked up, the
// returned identity has no name or number. Failures are kept in the
// Stop's cache for FailureTTL, and never persisted.
func (r *RouteResolver) Resolve(ctx context.Context, stop *Stop, routeID int) model.RouteIdentity {
	if route, found := stop.cachedRoute(routeID); found {
		return route
	}

	if route, found := r.cache.Route(routeID); found {
		stop.cacheRoute(route)
		return route
	}

	route, err := r.timetable.Route(ctx, routeID)
	if err != nil {
		loggerOrDefault(r.Logger).Warn("looking up route", "route_id", routeID, "error", err)
		unknown := model.RouteIdentity{RouteID: routeID}
		if r.FailureTTL > 0 {
			stop.cacheRouteFor(unknown, r.FailureTTL)
		}
		return unknown
	}
	route.RouteID = routeID

	stop.cacheRoute(route)
	r.cache.PutRoute(route)

	return route
}
