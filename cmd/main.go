package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tidbyt.dev/ptv"
	"tidbyt.dev/ptv/config"
	"tidbyt.dev/ptv/model"
	"tidbyt.dev/ptv/ptvapi"
	"tidbyt.dev/ptv/storage"
)

var rootCmd = &cobra.Command{
	Use:          "ptv",
	Short:        "PTV departure board",
	Long:         "Shows upcoming departures from Melbourne public transport stops",
	SilenceUsage: true,
}

var (
	configPath   string
	envPath      string
	cacheBackend string
	cachePath    string
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&envPath, "env", "", ".env", "File with environment variables")
	rootCmd.PersistentFlags().StringVarP(&cacheBackend, "cache", "", "", "Metadata cache backend (file, memory, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVarP(&cachePath, "cache-path", "", "", "Metadata cache file, directory or postgres URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(departuresCmd)
	rootCmd.AddCommand(directionsCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(feedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func LoadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cacheBackend != "" {
		cfg.Cache.Backend = cacheBackend
	}
	if cachePath != "" {
		switch cfg.Cache.Backend {
		case "postgres":
			cfg.Cache.PostgresURL = cachePath
		case "sqlite":
			cfg.Cache.SQLiteDir = cachePath
		default:
			cfg.Cache.Path = cachePath
		}
	}

	if err := cfg.Validate(true); err != nil {
		return nil, err
	}

	return cfg, nil
}

func BuildStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "file":
		return storage.NewFilesystem(cfg.Cache.Path), nil
	case "sqlite":
		s, err := storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: cfg.Cache.SQLiteDir})
		if err != nil {
			return nil, fmt.Errorf("creating sqlite storage: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := storage.NewPSQLStorage(cfg.Cache.PostgresURL, false)
		if err != nil {
			return nil, fmt.Errorf("creating postgres storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown cache backend '%s'", cfg.Cache.Backend)
}

func BuildClient(cfg *config.Config) *ptvapi.Client {
	client := ptvapi.NewClient(cfg.DevID, cfg.APIKey)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return client
}

// Sets up a board for the given stops, or for all configured stops
// if none are given.
func LoadBoard(stops []model.StopRef) (*ptv.Board, error) {
	logger := setupLogger()

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if len(stops) == 0 {
		stops, err = cfg.StopRefs()
		if err != nil {
			return nil, err
		}
		if len(stops) == 0 {
			return nil, fmt.Errorf("no stops configured")
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s, err := BuildStorage(cfg)
	if err != nil {
		return nil, err
	}

	client := BuildClient(cfg)

	boardStops := make([]*ptv.Stop, 0, len(stops))
	for _, ref := range stops {
		boardStops = append(boardStops, ptv.NewStop(ref.ID, ref.RouteType, ref.Name))
	}

	board := ptv.NewBoard(client, s, boardStops, ptv.Options{
		UpdateInterval: cfg.UpdateInterval,
		PerRouteLimit:  cfg.PerRouteLimit,
		CityKeywords:   cfg.CityKeywords,
		Location:       loc,
		MetadataTTL:    cfg.CacheTTL,
		Logger:         logger,
	})

	return board, nil
}
