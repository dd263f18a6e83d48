package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"transitview.onebusaway.org/internal/app"
	"transitview.onebusaway.org/internal/config"
	"transitview.onebusaway.org/internal/logging"
	"transitview.onebusaway.org/internal/provider"
)

func main() {
	var (
		configPath string
		gtfsSource string
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&gtfsSource, "gtfs-source", "", "Path or URL of a static GTFS zip (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if gtfsSource != "" {
		cfg.Provider.Source = gtfsSource
	}

	logger := logging.NewStructuredLogger(os.Stdout, logLevel(cfg.LogLevel))

	if cfg.Provider.Source == "" {
		logger.Error("no GTFS source configured; set provider.source or -gtfs-source")
		os.Exit(1)
	}

	prov, err := provider.NewStaticProvider(provider.StaticProviderConfig{
		Source:              cfg.Provider.Source,
		VehiclePositionsURL: cfg.Provider.VehiclePositionsURL,
		AgencyID:            cfg.Provider.AgencyID,
	}, logger)
	if err != nil {
		logging.LogError(logger, "failed to load GTFS feed", err, slog.String("source", cfg.Provider.Source))
		os.Exit(1)
	}

	// No place-enrichment backend is wired yet, so the hours, nearby, and
	// photos sections stay idle.
	application := app.NewApplication(cfg, logger, prov, nil)
	api := &restAPI{app: application}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Server.Env)
	err = srv.ListenAndServe()
	logger.Error(err.Error())
	os.Exit(1)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
