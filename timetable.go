package ptv

import (
	"context"
	"log/slog"

	"tidbyt.dev/ptv/model"
)

// The remote timetable service. Implemented by ptvapi.Client.
type Timetable interface {
	// Upcoming departures from a stop. A routeID of 0 means any
	// route.
	Departures(ctx context.Context, routeType model.RouteType, stopID string, routeID int, maxResults int) ([]model.Departure, error)

	// All routes travelling in a direction, across route types.
	Directions(ctx context.Context, directionID int) ([]model.DirectionInfo, error)

	Route(ctx context.Context, routeID int) (model.RouteIdentity, error)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
