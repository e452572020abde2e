package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"pdp-route-service/internal/adapters/claims"
	"pdp-route-service/internal/adapters/repositories"
	"pdp-route-service/internal/config"
	"pdp-route-service/internal/platform/db"
	"pdp-route-service/internal/ports"
	"pdp-route-service/internal/services"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the sim command. Flags override the config file, which
// overrides the built-in defaults.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "sim",
		Short: "Simulates a pickup-and-delivery fleet over a parcel set",
		Long: `sim announces every parcel at its arrival time, auctions it among the
vehicles and lets each vehicle follow its route planner until all parcels are
delivered or the time limit passes. The executed routes are printed as JSON.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSimConfig(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	f := root.Flags()
	f.Int("vehicles", 2, "Number of vehicles")
	f.Int("capacity", 4, "Vehicle capacity in demand units (0 is unbounded)")
	f.Float64("speed", 0.01, "Vehicle speed in distance units per millisecond")
	f.String("planner", string(services.PlannerClosest), "Route planner: closest or solver")
	f.Bool("reuse-routes", true, "Warm-start the solver with the previous route")
	f.Duration("tick", time.Second, "Simulation tick length")
	f.Duration("max-time", 24*time.Hour, "Simulation time limit")
	f.Int("solver-iterations", 200, "Local search iterations per solve")
	f.Int64("seed", 1, "Random seed for the solver")
	f.String("seed-path", "data/seeds/parcels.json", "Parcel seed file used when no database is configured")

	for key, flag := range map[string]string{
		"vehicles":          "vehicles",
		"capacity":          "capacity",
		"speed":             "speed",
		"planner":           "planner",
		"reuse_routes":      "reuse-routes",
		"tick":              "tick",
		"max_time":          "max-time",
		"solver_iterations": "solver-iterations",
		"seed":              "seed",
		"seed_path":         "seed-path",
	} {
		cobra.CheckErr(v.BindPFlag(key, f.Lookup(flag)))
	}

	return root
}

func run(ctx context.Context, cfg config.SimConfig, out io.Writer) error {
	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	var registry ports.ClaimRegistry = claims.NewMemoryRegistry()
	if cfg.RedisURL != "" {
		reg, err := claims.NewRedisRegistryFromURL(cfg.RedisURL, "pdp:", time.Hour)
		if err != nil {
			return err
		}
		defer reg.Close()
		registry = reg
	}

	res, err := services.NewSimulator(repo, registry).Run(ctx, cfg.Request())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func openRepository(cfg config.SimConfig) (ports.ParcelRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		parcels, err := repositories.ReadSeedFile(cfg.SeedPath)
		if err != nil {
			return nil, nil, err
		}
		return &repositories.StaticParcelRepository{Parcels: parcels}, func() {}, nil
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewSQLParcelRepository(conn), func() { conn.Close() }, nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		log.Println(err)
		stop()
		os.Exit(1)
	}
}
