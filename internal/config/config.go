// Package config loads engine configuration from a YAML file with
// environment-variable overrides. A missing file is not an error; every
// field has a working default so the binary starts with nothing but a GTFS
// source.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int    `yaml:"port" validate:"gt=0"`
	Env  string `yaml:"env" validate:"oneof=development staging production"`
}

type ProviderConfig struct {
	// Source is a local path or URL of a static GTFS zip.
	Source              string `yaml:"source"`
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	AgencyID            string `yaml:"agencyId"`
}

type TierDelaysConfig struct {
	HoursMS  int `yaml:"hoursMS" validate:"gte=0"`
	NearbyMS int `yaml:"nearbyMS" validate:"gte=0"`
	PhotosMS int `yaml:"photosMS" validate:"gte=0"`
}

type SectionsConfig struct {
	Fast                  TierDelaysConfig `yaml:"fast"`
	Slow                  TierDelaysConfig `yaml:"slow"`
	NearbyRadiusMeters    float64          `yaml:"nearbyRadiusMeters" validate:"gt=0"`
	ArrivalHorizonMinutes int              `yaml:"arrivalHorizonMinutes" validate:"gt=0"`
}

type CacheConfig struct {
	ArrivalTTLSeconds int `yaml:"arrivalTTLSeconds" validate:"gt=0"`
	NearbyTTLSeconds  int `yaml:"nearbyTTLSeconds" validate:"gt=0"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Sections SectionsConfig `yaml:"sections"`
	Cache    CacheConfig    `yaml:"cache"`
	LogLevel string         `yaml:"logLevel" validate:"oneof=debug info warn error"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Port: 4000, Env: "development"},
		Sections: SectionsConfig{
			Fast:                  TierDelaysConfig{HoursMS: 200, NearbyMS: 600, PhotosMS: 1200},
			Slow:                  TierDelaysConfig{HoursMS: 750, NearbyMS: 2000},
			NearbyRadiusMeters:    400,
			ArrivalHorizonMinutes: 180,
		},
		Cache: CacheConfig{
			ArrivalTTLSeconds: 300,
			NearbyTTLSeconds:  300,
		},
		LogLevel: "info",
	}
}

var searchPaths = []string{"config.yml", "config.yaml"}

// Load reads configuration from path, or from the standard search paths when
// path is empty. A .env file in the working directory is folded into the
// environment first, then TRANSITVIEW_* variables override the file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	paths := searchPaths
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if path == "" {
				continue
			}
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRANSITVIEW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRANSITVIEW_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("TRANSITVIEW_GTFS_SOURCE"); v != "" {
		cfg.Provider.Source = v
	}
	if v := os.Getenv("TRANSITVIEW_VEHICLE_POSITIONS_URL"); v != "" {
		cfg.Provider.VehiclePositionsURL = v
	}
	if v := os.Getenv("TRANSITVIEW_AGENCY_ID"); v != "" {
		cfg.Provider.AgencyID = v
	}
	if v := os.Getenv("TRANSITVIEW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// ArrivalHorizon returns the transit-section horizon as a duration.
func (c *Config) ArrivalHorizon() time.Duration {
	return time.Duration(c.Sections.ArrivalHorizonMinutes) * time.Minute
}

// ArrivalTTL returns the arrivals cache TTL as a duration.
func (c *Config) ArrivalTTL() time.Duration {
	return time.Duration(c.Cache.ArrivalTTLSeconds) * time.Second
}

// NearbyTTL returns the nearby cache TTL as a duration.
func (c *Config) NearbyTTL() time.Duration {
	return time.Duration(c.Cache.NearbyTTLSeconds) * time.Second
}

// Delays converts one tier-delay block to durations, in tier order.
func (d TierDelaysConfig) Delays() (hours, nearby, photos time.Duration) {
	return time.Duration(d.HoursMS) * time.Millisecond,
		time.Duration(d.NearbyMS) * time.Millisecond,
		time.Duration(d.PhotosMS) * time.Millisecond
}
