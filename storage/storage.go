package storage

import (
	"time"

	"tidbyt.dev/ptv/model"
)

// Persistent storage of stop topology and route metadata.
//
// The data is small and changes rarely, so it's always read and
// written as a single document. Implementations need not support
// concurrent writers; callers serialize read-modify-write cycles.
type Storage interface {
	// Reads the entire document. A document that doesn't exist
	// yet is not an error: an empty one is returned.
	Load() (*Document, error)

	// Replaces the stored document with doc.
	Save(doc *Document) error
}

// All cached metadata, keyed by stop ID and route ID respectively.
type Document struct {
	Stops  map[string]StopEntry
	Routes map[int]RouteEntry
}

// The directions served by a stop, as of Timestamp.
type StopEntry struct {
	Timestamp  time.Time
	Directions []model.Direction
}

// Display metadata for a route, as of Timestamp.
type RouteEntry struct {
	Timestamp time.Time
	Route     model.RouteIdentity
}

func NewDocument() *Document {
	return &Document{
		Stops:  map[string]StopEntry{},
		Routes: map[int]RouteEntry{},
	}
}

// Deep copy. Storage implementations hand out copies so that callers
// mutating a loaded document don't affect what's stored.
func (d *Document) Clone() *Document {
	c := NewDocument()
	for stopID, entry := range d.Stops {
		dirs := make([]model.Direction, 0, len(entry.Directions))
		for _, dir := range entry.Directions {
			dir.RouteIDs = append([]int{}, dir.RouteIDs...)
			dirs = append(dirs, dir)
		}
		c.Stops[stopID] = StopEntry{Timestamp: entry.Timestamp, Directions: dirs}
	}
	for routeID, entry := range d.Routes {
		c.Routes[routeID] = entry
	}
	return c
}
