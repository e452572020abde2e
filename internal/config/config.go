package config

import (
	"fmt"
	"os"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/services"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Get returns the environment variable key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Point is a depot location as written in config files.
type Point struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

// SimConfig is the configuration of a simulation run.
// Durations accept Go duration strings ("250ms", "8h") or plain milliseconds.
type SimConfig struct {
	Vehicles         int           `mapstructure:"vehicles"`
	Capacity         int           `mapstructure:"capacity"`
	Speed            float64       `mapstructure:"speed"`
	Depot            Point         `mapstructure:"depot"`
	Planner          string        `mapstructure:"planner"`
	ReuseRoutes      bool          `mapstructure:"reuse_routes"`
	Tick             time.Duration `mapstructure:"tick"`
	MaxTime          time.Duration `mapstructure:"max_time"`
	SolverIterations int           `mapstructure:"solver_iterations"`
	Seed             int64         `mapstructure:"seed"`
	SeedPath         string        `mapstructure:"seed_path"`
	DatabaseURL      string        `mapstructure:"database_url"`
	RedisURL         string        `mapstructure:"redis_url"`
}

// SetDefaults registers the default simulation settings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("vehicles", 2)
	v.SetDefault("capacity", 4)
	v.SetDefault("speed", 0.01)
	v.SetDefault("depot.x", 0.0)
	v.SetDefault("depot.y", 0.0)
	v.SetDefault("planner", string(services.PlannerClosest))
	v.SetDefault("reuse_routes", true)
	v.SetDefault("tick", "1s")
	v.SetDefault("max_time", "24h")
	v.SetDefault("solver_iterations", 200)
	v.SetDefault("seed", 1)
	v.SetDefault("seed_path", "data/seeds/parcels.json")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
}

// LoadSimConfig reads cfgFile (when set) into v and decodes the result.
// Environment variables prefixed with PDP_ override file values.
func LoadSimConfig(v *viper.Viper, cfgFile string) (SimConfig, error) {
	SetDefaults(v)
	v.SetEnvPrefix("PDP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return SimConfig{}, fmt.Errorf("load sim config: read %q: %w", cfgFile, err)
		}
	}

	var cfg SimConfig
	hooks := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			millisecondsHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return SimConfig{}, fmt.Errorf("load sim config: decode: %w", err)
	}
	return cfg, nil
}

// millisecondsHook decodes bare numbers into durations as milliseconds.
func millisecondsHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch n := data.(type) {
		case int:
			return time.Duration(n) * time.Millisecond, nil
		case int64:
			return time.Duration(n) * time.Millisecond, nil
		case float64:
			return time.Duration(n * float64(time.Millisecond)), nil
		case string:
			if ms, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
				return time.Duration(ms) * time.Millisecond, nil
			}
		}
		return data, nil
	}
}

// Request converts the config into a simulation request.
func (c SimConfig) Request() services.SimulationRequest {
	return services.SimulationRequest{
		VehicleCount:     c.Vehicles,
		Capacity:         c.Capacity,
		Speed:            c.Speed,
		Depot:            domain.Point{X: c.Depot.X, Y: c.Depot.Y},
		Planner:          services.PlannerKind(c.Planner),
		ReuseRoutes:      c.ReuseRoutes,
		TickLength:       c.Tick.Milliseconds(),
		MaxTime:          c.MaxTime.Milliseconds(),
		SolverIterations: c.SolverIterations,
		Seed:             c.Seed,
	}
}
