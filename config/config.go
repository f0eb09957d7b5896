package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tidbyt.dev/ptv/model"
	"tidbyt.dev/ptv/parse"
)

const (
	DefaultTimezone       = "Australia/Melbourne"
	DefaultUpdateInterval = 30 * time.Second
	DefaultPerRouteLimit  = 2
	DefaultCacheTTL       = 7 * 24 * time.Hour
	DefaultCacheBackend   = "file"
	DefaultCachePath      = "cache/stops.json"
	DefaultSQLiteDir      = "cache"
)

// Environment variables. The unprefixed names match older .env files.
// The PTV_ prefixed names take precedence.
var (
	EnvDevID       = []string{"PTV_DEV_ID", "USER_ID"}
	EnvAPIKey      = []string{"PTV_API_KEY", "API_KEY"}
	EnvTramStopID  = "TRAM_STOP_ID"
	EnvTrainStopID = "TRAIN_STOP_ID"
	EnvTimezone    = "TIMEZONE"
)

type Stop struct {
	ID        string `yaml:"id" validate:"required"`
	RouteType string `yaml:"route_type" validate:"required"`
	Name      string `yaml:"name"`
}

type CacheConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=file memory sqlite postgres"`
	// JSON document, for the file backend.
	Path string `yaml:"path" validate:"required_if=Backend file"`

	// Directory holding ptv.db, for the sqlite backend.
	SQLiteDir string `yaml:"sqlite_dir" validate:"required_if=Backend sqlite"`

	PostgresURL string `yaml:"postgres_url" validate:"required_if=Backend postgres"`
}

type Config struct {
	DevID   string `yaml:"dev_id"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	Timezone       string        `yaml:"timezone" validate:"required"`
	UpdateInterval time.Duration `yaml:"update_interval" validate:"gt=0"`
	PerRouteLimit  int           `yaml:"per_route_limit" validate:"gt=0"`
	CityKeywords   []string      `yaml:"city_keywords" validate:"dive,required"`

	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gt=0"`
	Cache    CacheConfig   `yaml:"cache"`

	Stops []Stop `yaml:"stops" validate:"dive"`

	// CSV file with stop_id, route_type and (optionally) stop_name
	// columns. Its stops are added to Stops.
	StopsCSV string `yaml:"stops_csv"`
}

func Default() *Config {
	return &Config{
		Timezone:       DefaultTimezone,
		UpdateInterval: DefaultUpdateInterval,
		PerRouteLimit:  DefaultPerRouteLimit,
		CacheTTL:       DefaultCacheTTL,
		Cache: CacheConfig{
			Backend:   DefaultCacheBackend,
			Path:      DefaultCachePath,
			SQLiteDir: DefaultSQLiteDir,
		},
	}
}

// Loads variables from a .env file into the environment. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Reads configuration from a YAML file, if path is non-empty, and
// applies environment overrides on top of defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}

		// Relative CSV paths are relative to the config file.
		if cfg.StopsCSV != "" && !filepath.IsAbs(cfg.StopsCSV) {
			cfg.StopsCSV = filepath.Join(filepath.Dir(path), cfg.StopsCSV)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value, true
		}
	}
	return "", false
}

func (c *Config) applyEnv() {
	if v, ok := lookupEnv(EnvDevID...); ok {
		c.DevID = v
	}
	if v, ok := lookupEnv(EnvAPIKey...); ok {
		c.APIKey = v
	}
	if v, ok := lookupEnv(EnvTimezone); ok {
		c.Timezone = v
	}
	if v, ok := lookupEnv(EnvTramStopID); ok {
		c.addStop(Stop{ID: v, RouteType: model.RouteTypeTram.String()})
	}
	if v, ok := lookupEnv(EnvTrainStopID); ok {
		c.addStop(Stop{ID: v, RouteType: model.RouteTypeTrain.String()})
	}
}

func (c *Config) addStop(stop Stop) {
	for _, s := range c.Stops {
		if s.ID == stop.ID && s.RouteType == stop.RouteType {
			return
		}
	}
	c.Stops = append(c.Stops, stop)
}

// Checks the configuration. Credentials are only required when
// requireCredentials is set, as some commands never talk to PTV.
func (c *Config) Validate(requireCredentials bool) error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if requireCredentials && (c.DevID == "" || c.APIKey == "") {
		return fmt.Errorf("invalid config: dev_id and api_key are required (or %s and %s)", EnvDevID[1], EnvAPIKey[1])
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	for _, s := range c.Stops {
		if _, err := model.ParseRouteType(s.RouteType); err != nil {
			return fmt.Errorf("invalid config: stop %s: %w", s.ID, err)
		}
	}

	return nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// All configured stops, including those listed in StopsCSV.
func (c *Config) StopRefs() ([]model.StopRef, error) {
	refs := []model.StopRef{}
	seen := map[model.StopRef]bool{}

	add := func(ref model.StopRef) {
		key := model.StopRef{ID: ref.ID, RouteType: ref.RouteType}
		if seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, ref)
	}

	for _, s := range c.Stops {
		routeType, err := model.ParseRouteType(s.RouteType)
		if err != nil {
			return nil, fmt.Errorf("stop %s: %w", s.ID, err)
		}
		add(model.StopRef{ID: s.ID, RouteType: routeType, Name: s.Name})
	}

	if c.StopsCSV != "" {
		f, err := os.Open(c.StopsCSV)
		if err != nil {
			return nil, fmt.Errorf("opening stops csv: %w", err)
		}
		defer f.Close()

		stops, err := parse.ParseStops(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", c.StopsCSV, err)
		}
		for _, s := range stops {
			add(s)
		}
	}

	return refs, nil
}
