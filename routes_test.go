package ptv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/ptv/model"
	"tidbyt.dev/ptv/storage"
	"tidbyt.dev/ptv/testutil"
)

func TestRouteResolverTiers(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tt := testutil.NewFakeTimetable()
	tt.RoutesByID[5] = model.RouteIdentity{RouteID: 5, Name: "Melbourne University - East Malvern", Number: "5"}

	s := storage.NewMemoryStorage()
	cache := NewMetadataCache(s)
	cache.TimeNow = func() time.Time { return now }
	r := NewRouteResolver(tt, cache)

	stop := NewStop("2504", model.RouteTypeTram, "")

	// Fetched from the timetable, and stored in both tiers
	route := r.Resolve(context.Background(), stop, 5)
	assert.Equal(t, tt.RoutesByID[5], route)
	assert.Equal(t, 1, tt.Count("routes/5"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "5", doc.Routes[5].Route.Number)
	assert.True(t, now.Equal(doc.Routes[5].Timestamp))

	// In-memory tier doesn't touch storage
	loads := s.NumLoads
	assert.Equal(t, route, r.Resolve(context.Background(), stop, 5))
	assert.Equal(t, loads, s.NumLoads)
	assert.Equal(t, 1, tt.Count("routes/5"))

	// A different stop goes through the persisted tier
	other := NewStop("2505", model.RouteTypeTram, "")
	assert.Equal(t, route, r.Resolve(context.Background(), other, 5))
	assert.Equal(t, loads+1, s.NumLoads)
	assert.Equal(t, 1, tt.Count("routes/5"))

	// Once the persisted entry expires, the timetable is asked
	// again
	now = now.Add(DefaultMetadataTTL + time.Second)
	third := NewStop("2506", model.RouteTypeTram, "")
	assert.Equal(t, route, r.Resolve(context.Background(), third, 5))
	assert.Equal(t, 2, tt.Count("routes/5"))
}

func TestRouteResolverFailure(t *testing.T) {
	tt := testutil.NewFakeTimetable()
	tt.Fail["routes/99"] = true

	s := storage.NewMemoryStorage()
	r := NewRouteResolver(tt, NewMetadataCache(s))

	stop := NewStop("2504", model.RouteTypeTram, "")

	route := r.Resolve(context.Background(), stop, 99)
	assert.Equal(t, model.RouteIdentity{RouteID: 99}, route)

	// The stop remembers the failure
	for i := 0; i < 5; i++ {
		assert.Equal(t, model.RouteIdentity{RouteID: 99}, r.Resolve(context.Background(), stop, 99))
	}
	assert.Equal(t, 1, tt.Count("routes/99"))

	// but it's never persisted
	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, len(doc.Routes))

	// Recovers once upstream does
	tt.Fail["routes/99"] = false
	tt.RoutesByID[99] = model.RouteIdentity{RouteID: 99, Number: "99"}
	other := NewStop("2505", model.RouteTypeTram, "")
	assert.Equal(t, "99", r.Resolve(context.Background(), other, 99).Number)
	assert.Equal(t, 2, tt.Count("routes/99"))
}

func TestRouteResolverFailureTTL(t *testing.T) {
	for _, tc := range []struct {
		name  string
		ttl   time.Duration
		calls int
	}{
		{"disabled", 0, 3},
		{"default", DefaultRouteFailureTTL, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tt := testutil.NewFakeTimetable()
			tt.Fail["routes/99"] = true

			r := NewRouteResolver(tt, NewMetadataCache(storage.NewMemoryStorage()))
			r.FailureTTL = tc.ttl

			stop := NewStop("2504", model.RouteTypeTram, "")
			for i := 0; i < 3; i++ {
				r.Resolve(context.Background(), stop, 99)
			}
			assert.Equal(t, tc.calls, tt.Count("routes/99"))
		})
	}
}
