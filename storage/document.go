package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"tidbyt.dev/ptv/model"
)

// On disk, the document is a single JSON object. Stop entries are
// keyed by stop ID at the top level, and route entries live in a
// nested "routes" object:
//
//	{
//	  "1234": {"timestamp": "...", "directions": [...]},
//	  "routes": {"5": {"timestamp": "...", "data": {"route_name": ..., "route_number": ...}}}
//	}

const routesKey = "routes"

// Legacy cache files hold naive local timestamps.
const legacyTimestampLayout = "2006-01-02T15:04:05"

type stopEntryJSON struct {
	Timestamp  string            `json:"timestamp"`
	Directions []model.Direction `json:"directions"`
}

type routeEntryJSON struct {
	Timestamp string              `json:"timestamp"`
	Data      model.RouteIdentity `json:"data"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Unparseable timestamps come back as the zero time, which is never
// within any TTL.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, s, time.Local); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func encodeStopEntry(entry StopEntry) stopEntryJSON {
	dirs := entry.Directions
	if dirs == nil {
		dirs = []model.Direction{}
	}
	return stopEntryJSON{
		Timestamp:  formatTimestamp(entry.Timestamp),
		Directions: dirs,
	}
}

func decodeStopEntry(raw stopEntryJSON) StopEntry {
	for i := range raw.Directions {
		if raw.Directions[i].RouteIDs == nil {
			raw.Directions[i].RouteIDs = []int{}
		}
	}
	return StopEntry{
		Timestamp:  parseTimestamp(raw.Timestamp),
		Directions: raw.Directions,
	}
}

func encodeRouteEntry(entry RouteEntry) routeEntryJSON {
	return routeEntryJSON{
		Timestamp: formatTimestamp(entry.Timestamp),
		Data:      entry.Route,
	}
}

func decodeRouteEntry(routeID int, raw routeEntryJSON) RouteEntry {
	raw.Data.RouteID = routeID
	return RouteEntry{
		Timestamp: parseTimestamp(raw.Timestamp),
		Route:     raw.Data,
	}
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	for stopID, entry := range d.Stops {
		out[stopID] = encodeStopEntry(entry)
	}

	routes := map[int]routeEntryJSON{}
	for routeID, entry := range d.Routes {
		routes[routeID] = encodeRouteEntry(entry)
	}
	out[routesKey] = routes

	return json.Marshal(out)
}

// Individual entries that fail to decode are dropped. The document
// itself must be a JSON object.
func (d *Document) UnmarshalJSON(buf []byte) error {
	top := map[string]json.RawMessage{}
	if err := json.Unmarshal(buf, &top); err != nil {
		return fmt.Errorf("unmarshalling document: %w", err)
	}

	d.Stops = map[string]StopEntry{}
	d.Routes = map[int]RouteEntry{}

	for key, raw := range top {
		if key == routesKey {
			routes := map[string]json.RawMessage{}
			if err := json.Unmarshal(raw, &routes); err != nil {
				continue
			}
			// Bad entries are dropped one at a time.
			for id, rawEntry := range routes {
				routeID, err := strconv.Atoi(id)
				if err != nil {
					continue
				}
				entry := routeEntryJSON{}
				if err := json.Unmarshal(rawEntry, &entry); err != nil {
					continue
				}
				d.Routes[routeID] = decodeRouteEntry(routeID, entry)
			}
			continue
		}

		entry := stopEntryJSON{}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		d.Stops[key] = decodeStopEntry(entry)
	}

	return nil
}
