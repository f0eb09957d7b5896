package ptv

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tidbyt.dev/ptv/model"
	"tidbyt.dev/ptv/storage"
)

const (
	DefaultUpdateInterval = 30 * time.Second
	DefaultFrameInterval  = 1 * time.Second
)

type Options struct {
	// Minimum time between departure updates.
	UpdateInterval time.Duration

	// Departures requested per (direction, route) pair.
	PerRouteLimit int

	CityKeywords []string

	// Timezone for display.
	Location *time.Location

	// Validity of cached stop topology and route identities.
	MetadataTTL time.Duration

	Logger *slog.Logger
}

// The views of a single stop, as rendered in one frame.
type StopViews struct {
	Stop  *Stop
	Views []model.DirectionView
}

// Departure board for a set of stops.
//
// Departures are refreshed by Update, at most once per
// UpdateInterval. Views are computed from the most recent departures
// against the current time, so countdowns keep ticking between
// updates.
type Board struct {
	Stops          []*Stop
	UpdateInterval time.Duration
	PerRouteLimit  int
	TimeNow        func() time.Time
	Logger         *slog.Logger

	Cache      *MetadataCache
	Topology   *TopologyResolver
	Routes     *RouteResolver
	Aggregator *Aggregator
	Reducer    *Reducer

	departures map[*Stop][]model.Departure
	lastUpdate time.Time
}

func NewBoard(timetable Timetable, s storage.Storage, stops []*Stop, opts Options) *Board {
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = DefaultUpdateInterval
	}
	if opts.PerRouteLimit <= 0 {
		opts.PerRouteLimit = DefaultPerRouteLimit
	}
	if opts.MetadataTTL <= 0 {
		opts.MetadataTTL = DefaultMetadataTTL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CityKeywords == nil {
		opts.CityKeywords = DefaultCityKeywords
	}

	cache := NewMetadataCache(s)
	cache.TTL = opts.MetadataTTL
	cache.Logger = opts.Logger

	topology := NewTopologyResolver(timetable, cache)
	topology.Logger = opts.Logger

	routes := NewRouteResolver(timetable, cache)
	routes.Logger = opts.Logger

	aggregator := NewAggregator(timetable, topology)
	aggregator.Logger = opts.Logger

	reducer := NewReducer(routes)
	reducer.CityKeywords = opts.CityKeywords
	reducer.Location = opts.Location

	b := &Board{
		Stops:          stops,
		UpdateInterval: opts.UpdateInterval,
		PerRouteLimit:  opts.PerRouteLimit,
		TimeNow:        time.Now,
		Logger:         opts.Logger,

		Cache:      cache,
		Topology:   topology,
		Routes:     routes,
		Aggregator: aggregator,
		Reducer:    reducer,

		departures: map[*Stop][]model.Departure{},
	}

	// Cache expiry follows the board's clock.
	cache.TimeNow = func() time.Time { return b.TimeNow() }

	return b
}

// Resolves the topology of every stop.
func (b *Board) Populate(ctx context.Context) {
	for _, stop := range b.Stops {
		b.Topology.Resolve(ctx, stop)
	}
}

// Refreshes departures for every stop, unless less than
// UpdateInterval has passed since the last update completed. Returns
// true if an update was made.
func (b *Board) Update(ctx context.Context) bool {
	if !b.lastUpdate.IsZero() && b.TimeNow().Sub(b.lastUpdate) < b.UpdateInterval {
		return false
	}

	for _, stop := range b.Stops {
		b.departures[stop] = b.Aggregator.Aggregate(ctx, stop, b.PerRouteLimit)
		loggerOrDefault(b.Logger).Debug(
			"updated departures",
			"stop_id", stop.ID,
			"route_type", stop.RouteType.String(),
			"departures", len(b.departures[stop]),
		)
	}

	b.lastUpdate = b.TimeNow()

	return true
}

// Departures from the most recent update.
func (b *Board) Departures(stop *Stop) []model.Departure {
	return b.departures[stop]
}

// All departures from the most recent update, across stops.
func (b *Board) AllDepartures() []model.Departure {
	all := []model.Departure{}
	for _, stop := range b.Stops {
		all = append(all, b.departures[stop]...)
	}
	sortDepartures(all)
	return all
}

func (b *Board) Views(ctx context.Context, stop *Stop) []model.DirectionView {
	return b.Reducer.Reduce(ctx, stop, b.departures[stop], b.TimeNow())
}

func (b *Board) Frame(ctx context.Context) []StopViews {
	frame := make([]StopViews, 0, len(b.Stops))
	for _, stop := range b.Stops {
		frame = append(frame, StopViews{Stop: stop, Views: b.Views(ctx, stop)})
	}
	return frame
}

// Populates the board, then updates it as needed and renders a frame
// every frameInterval, until ctx is cancelled.
func (b *Board) Run(ctx context.Context, frameInterval time.Duration, render func([]StopViews)) error {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}

	b.Populate(ctx)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.Update(ctx)
		render(b.Frame(ctx))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Separates city-bound views from outbound ones. Order is preserved.
func Split(views []model.DirectionView) ([]model.DirectionView, []model.DirectionView) {
	city := []model.DirectionView{}
	outbound := []model.DirectionView{}
	for _, v := range views {
		if v.City {
			city = append(city, v)
		} else {
			outbound = append(outbound, v)
		}
	}
	return city, outbound
}

// Returns the view with the earliest first countdown.
func Soonest(views []model.DirectionView) (model.DirectionView, bool) {
	best := -1
	bestSeconds := 0
	for i, v := range views {
		if len(v.Countdowns) == 0 {
			continue
		}
		seconds, err := countdownSeconds(v.Countdowns[0])
		if err != nil {
			continue
		}
		if best < 0 || seconds < bestSeconds {
			best = i
			bestSeconds = seconds
		}
	}
	if best < 0 {
		return model.DirectionView{}, false
	}
	return views[best], true
}

func countdownSeconds(countdown string) (int, error) {
	mins, secs, found := strings.Cut(countdown, ":")
	if !found {
		return 0, fmt.Errorf("malformed countdown '%s'", countdown)
	}
	m, err := strconv.Atoi(mins)
	if err != nil {
		return 0, fmt.Errorf("malformed countdown '%s': %w", countdown, err)
	}
	s, err := strconv.Atoi(secs)
	if err != nil {
		return 0, fmt.Errorf("malformed countdown '%s': %w", countdown, err)
	}
	return m*60 + s, nil
}

// Formats an MM:SS countdown for display, e.g. "4 m 5 s". Departures
// that are due show as "now".
func DisplayCountdown(countdown string) string {
	if countdown == CountdownNow {
		return "now"
	}
	seconds, err := countdownSeconds(countdown)
	if err != nil {
		return countdown
	}
	return fmt.Sprintf("%d m %d s", seconds/60, seconds%60)
}
