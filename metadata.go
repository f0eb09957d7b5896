package ptv

import (
	"log/slog"
	"sync"
	"time"

	"tidbyt.dev/ptv/model"
	"tidbyt.dev/ptv/storage"
)

const DefaultMetadataTTL = 7 * 24 * time.Hour

// Stop topology and route identities, persisted in a Storage and
// subject to a TTL.
//
// The cache is an optimization. Storage failures are logged and
// treated as misses (on read) or ignored (on write).
type MetadataCache struct {
	TTL     time.Duration
	TimeNow func() time.Time
	Logger  *slog.Logger

	storage storage.Storage
	mutex   sync.Mutex
}

func NewMetadataCache(s storage.Storage) *MetadataCache {
	return &MetadataCache{
		TTL:     DefaultMetadataTTL,
		TimeNow: time.Now,
		storage: s,
	}
}

// Reads the whole document. Never fails: if storage can't be read,
// an empty document is returned.
func (c *MetadataCache) Load() *storage.Document {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.load()
}

// Replaces the whole document. Errors are logged and swallowed.
func (c *MetadataCache) Save(doc *storage.Document) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.save(doc)
}

func (c *MetadataCache) load() *storage.Document {
	doc, err := c.storage.Load()
	if err != nil {
		loggerOrDefault(c.Logger).Warn("loading metadata cache", "error", err)
		return storage.NewDocument()
	}
	if doc == nil {
		return storage.NewDocument()
	}
	return doc
}

func (c *MetadataCache) save(doc *storage.Document) {
	err := c.storage.Save(doc)
	if err != nil {
		loggerOrDefault(c.Logger).Warn("saving metadata cache", "error", err)
	}
}

func (c *MetadataCache) valid(timestamp time.Time) bool {
	return c.TimeNow().Sub(timestamp) < c.TTL
}

// Returns the cached directions of a stop, unless missing or
// expired. An empty list counts as missing.
func (c *MetadataCache) Directions(stopID string) ([]model.Direction, bool) {
	doc := c.Load()

	entry, found := doc.Stops[stopID]
	if !found || len(entry.Directions) == 0 || !c.valid(entry.Timestamp) {
		return nil, false
	}
	return cloneDirections(entry.Directions), true
}

// Stores the directions of a stop with a fresh timestamp. Empty
// lists are not stored.
func (c *MetadataCache) PutDirections(stopID string, dirs []model.Direction) {
	if len(dirs) == 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	doc := c.load()
	doc.Stops[stopID] = storage.StopEntry{
		Timestamp:  c.TimeNow().UTC(),
		Directions: cloneDirections(dirs),
	}
	c.save(doc)
}

// Returns the cached identity of a route, unless missing or expired.
func (c *MetadataCache) Route(routeID int) (model.RouteIdentity, bool) {
	doc := c.Load()

	entry, found := doc.Routes[routeID]
	if !found || !c.valid(entry.Timestamp) {
		return model.RouteIdentity{}, false
	}
	route := entry.Route
	route.RouteID = routeID
	return route, true
}

func (c *MetadataCache) PutRoute(route model.RouteIdentity) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	doc := c.load()
	doc.Routes[route.RouteID] = storage.RouteEntry{
		Timestamp: c.TimeNow().UTC(),
		Route:     route,
	}
	c.save(doc)
}
