package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"tidbyt.dev/ptv/model"
)

// The SQL backends store one row per document entry.

const (
	namespaceStop  = "stop"
	namespaceRoute = "route"
)

type entryRow struct {
	Namespace string
	Key       string
	Timestamp time.Time
	Payload   string
}

// Flattens a document into rows, in a stable order.
func documentRows(doc *Document) ([]entryRow, error) {
	rows := []entryRow{}

	for stopID, entry := range doc.Stops {
		dirs := entry.Directions
		if dirs == nil {
			dirs = []model.Direction{}
		}
		payload, err := json.Marshal(dirs)
		if err != nil {
			return nil, fmt.Errorf("marshalling directions for stop %s: %w", stopID, err)
		}
		rows = append(rows, entryRow{namespaceStop, stopID, entry.Timestamp.UTC(), string(payload)})
	}

	for routeID, entry := range doc.Routes {
		payload, err := json.Marshal(entry.Route)
		if err != nil {
			return nil, fmt.Errorf("marshalling route %d: %w", routeID, err)
		}
		rows = append(rows, entryRow{namespaceRoute, strconv.Itoa(routeID), entry.Timestamp.UTC(), string(payload)})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Namespace != rows[j].Namespace {
			return rows[i].Namespace < rows[j].Namespace
		}
		return rows[i].Key < rows[j].Key
	})

	return rows, nil
}

// Adds a row to the document. Rows that can't be decoded are
// dropped, same as for the JSON file.
func (d *Document) addRow(row entryRow) {
	switch row.Namespace {
	case namespaceStop:
		dirs := []model.Direction{}
		if err := json.Unmarshal([]byte(row.Payload), &dirs); err != nil {
			return
		}
		entry := decodeStopEntry(stopEntryJSON{Directions: dirs})
		entry.Timestamp = row.Timestamp.UTC()
		d.Stops[row.Key] = entry
	case namespaceRoute:
		routeID, err := strconv.Atoi(row.Key)
		if err != nil {
			return
		}
		route := model.RouteIdentity{}
		if err := json.Unmarshal([]byte(row.Payload), &route); err != nil {
			return
		}
		route.RouteID = routeID
		d.Routes[routeID] = RouteEntry{Timestamp: row.Timestamp.UTC(), Route: route}
	}
}
