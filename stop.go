package ptv

import (
	"time"

	"github.com/bluele/gcache"

	"tidbyt.dev/ptv/model"
)

const DefaultRouteCacheSize = 64

// A physical stop, as served by a single route type.
//
// Directions is empty until the stop has been resolved by a
// TopologyResolver. Route identities looked up for the stop are kept
// in memory for the lifetime of the Stop.
type Stop struct {
	ID         string
	RouteType  model.RouteType
	Name       string
	Directions []model.Direction

	routes gcache.Cache
}

func NewStop(id string, routeType model.RouteType, name string) *Stop {
	return &Stop{
		ID:         id,
		RouteType:  routeType,
		Name:       name,
		Directions: []model.Direction{},
	}
}

// Looks up one of the stop's directions by ID.
func (s *Stop) Direction(id int) (model.Direction, bool) {
	for _, d := range s.Directions {
		if d.ID == id {
			return d, true
		}
	}
	return model.Direction{}, false
}

// Records that routeID travels in direction id through this stop.
func (s *Stop) mergeDirection(id int, name string, routeID int) {
	for i := range s.Directions {
		if s.Directions[i].ID != id {
			continue
		}
		if !s.Directions[i].HasRoute(routeID) {
			s.Directions[i].RouteIDs = append(s.Directions[i].RouteIDs, routeID)
		}
		return
	}

	s.Directions = append(s.Directions, model.Direction{
		ID:       id,
		Name:     name,
		RouteIDs: []int{routeID},
	})
}

func (s *Stop) routeCache() gcache.Cache {
	if s.routes == nil {
		s.routes = gcache.New(DefaultRouteCacheSize).LRU().Build()
	}
	return s.routes
}

func (s *Stop) cachedRoute(routeID int) (model.RouteIdentity, bool) {
	v, err := s.routeCache().Get(routeID)
	if err != nil {
		return model.RouteIdentity{}, false
	}
	route, ok := v.(model.RouteIdentity)
	return route, ok
}

func (s *Stop) cacheRoute(route model.RouteIdentity) {
	s.routeCache().Set(route.RouteID, route)
}

// Like cacheRoute, but the entry is dropped after ttl.
func (s *Stop) cacheRouteFor(route model.RouteIdentity, ttl time.Duration) {
	s.routeCache().SetWithExpire(route.RouteID, route, ttl)
}

func cloneDirections(dirs []model.Direction) []model.Direction {
	c := make([]model.Direction, 0, len(dirs))
	for _, d := range dirs {
		d.RouteIDs = append([]int{}, d.RouteIDs...)
		c = append(c, d)
	}
	return c
}
