package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/ptv/model"
)

func clearEnv(t *testing.T) {
	for _, key := range append(append([]string{EnvTramStopID, EnvTrainStopID, EnvTimezone}, EnvDevID...), EnvAPIKey...) {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Australia/Melbourne", cfg.Timezone)
	assert.Equal(t, 30*time.Second, cfg.UpdateInterval)
	assert.Equal(t, 2, cfg.PerRouteLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "cache/stops.json", cfg.Cache.Path)
	assert.Equal(t, "cache", cfg.Cache.SQLiteDir)

	assert.NoError(t, cfg.Validate(false))
	assert.Error(t, cfg.Validate(true))
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	writeFile(t, dir, "stops.csv", "stop_id,route_type,stop_name\n1071,train,Flinders Street\n2504,tram,duplicate\n")
	path := writeFile(t, dir, "ptv.yaml", `
dev_id: "3000165"
api_key: 9c132d31-6a30-4cac-8d8b-8a1970834799
timezone: Australia/Sydney
update_interval: 45s
per_route_limit: 3
city_keywords: ["Flinders"]
cache:
  backend: sqlite
  sqlite_dir: /tmp/ptv
stops:
  - id: "2504"
    route_type: tram
    name: Glenferrie Rd
stops_csv: stops.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(true))

	assert.Equal(t, "3000165", cfg.DevID)
	assert.Equal(t, 45*time.Second, cfg.UpdateInterval)
	assert.Equal(t, 3, cfg.PerRouteLimit)
	assert.Equal(t, []string{"Flinders"}, cfg.CityKeywords)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "/tmp/ptv", cfg.Cache.SQLiteDir)
	assert.Equal(t, filepath.Join(dir, "stops.csv"), cfg.StopsCSV)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Australia/Sydney", loc.String())

	refs, err := cfg.StopRefs()
	require.NoError(t, err)
	assert.Equal(t, []model.StopRef{
		{ID: "2504", RouteType: model.RouteTypeTram, Name: "Glenferrie Rd"},
		{ID: "1071", RouteType: model.RouteTypeTrain, Name: "Flinders Street"},
	}, refs)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_ID", "1234")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("PTV_API_KEY", "new-key")
	t.Setenv("TRAM_STOP_ID", "2504")
	t.Setenv("TRAIN_STOP_ID", "1071")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(true))

	assert.Equal(t, "1234", cfg.DevID)
	assert.Equal(t, "new-key", cfg.APIKey)
	assert.Equal(t, "UTC", cfg.Timezone)

	refs, err := cfg.StopRefs()
	require.NoError(t, err)
	assert.Equal(t, []model.StopRef{
		{ID: "2504", RouteType: model.RouteTypeTram},
		{ID: "1071", RouteType: model.RouteTypeTrain},
	}, refs)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	// Variables already present, even if empty, aren't overridden.
	os.Unsetenv("USER_ID")
	os.Unsetenv("API_KEY")
	os.Unsetenv("PTV_DEV_ID")
	os.Unsetenv("PTV_API_KEY")

	path := writeFile(t, dir, ".env", "USER_ID=5555\nAPI_KEY=abc\n")
	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "5555", cfg.DevID)
	assert.Equal(t, "abc", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"ok", func(c *Config) {}, true},
		{"bad_timezone", func(c *Config) { c.Timezone = "Mars/Olympus_Mons" }, false},
		{"no_timezone", func(c *Config) { c.Timezone = "" }, false},
		{"zero_interval", func(c *Config) { c.UpdateInterval = 0 }, false},
		{"zero_limit", func(c *Config) { c.PerRouteLimit = 0 }, false},
		{"bad_backend", func(c *Config) { c.Cache.Backend = "redis" }, false},
		{"file_without_path", func(c *Config) { c.Cache.Path = "" }, false},
		{"memory_without_path", func(c *Config) { c.Cache.Backend = "memory"; c.Cache.Path = "" }, true},
		{"sqlite_without_dir", func(c *Config) { c.Cache.Backend = "sqlite"; c.Cache.SQLiteDir = "" }, false},
		{"sqlite_without_path", func(c *Config) { c.Cache.Backend = "sqlite"; c.Cache.Path = "" }, true},
		{"postgres_without_url", func(c *Config) { c.Cache.Backend = "postgres" }, false},
		{"bad_base_url", func(c *Config) { c.BaseURL = "not a url" }, false},
		{"empty_keyword", func(c *Config) { c.CityKeywords = []string{"City", ""} }, false},
		{"stop_without_id", func(c *Config) { c.Stops = []Stop{{RouteType: "tram"}} }, false},
		{"stop_bad_route_type", func(c *Config) { c.Stops = []Stop{{ID: "1", RouteType: "ferry"}} }, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.DevID = "3000165"
			cfg.APIKey = "key"
			tc.mutate(cfg)

			err := cfg.Validate(true)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, dir, "bad.yaml", "update_interval: [1, 2")
	_, err = Load(path)
	assert.Error(t, err)

	path = writeFile(t, dir, "csv.yaml", "stops_csv: nope.csv\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	_, err = cfg.StopRefs()
	assert.Error(t, err)
}
