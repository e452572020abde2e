package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"pdp-route-service/internal/adapters/claims"
	"pdp-route-service/internal/adapters/repositories"
	"pdp-route-service/internal/api"
	"pdp-route-service/internal/api/handlers"
	"pdp-route-service/internal/config"
	"pdp-route-service/internal/metrics"
	"pdp-route-service/internal/platform/db"
	"pdp-route-service/internal/ports"
	"pdp-route-service/internal/services"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	redisURL := config.Get("REDIS_URL", "")
	seedPath := config.Get("SEED_PATH", "data/seeds/parcels.json")
	port := config.Get("PORT", "8080")

	metrics.RegisterDefault()
	checks := map[string]handlers.Check{}

	var repo ports.ParcelRepository
	if databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		// Initialize schema and seed demo data on startup for local runs.
		if err := initAndSeed(conn, seedPath); err != nil {
			log.Fatal(err)
		}
		repo = repositories.NewSQLParcelRepository(conn)
		checks["postgres"] = conn.PingContext
	} else {
		parcels, err := repositories.ReadSeedFile(seedPath)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("DATABASE_URL not set, serving parcels from seed_path=%s count=%d", seedPath, len(parcels))
		repo = &repositories.StaticParcelRepository{Parcels: parcels}
	}

	var registry ports.ClaimRegistry = claims.NewMemoryRegistry()
	if redisURL != "" {
		reg, err := claims.NewRedisRegistryFromURL(redisURL, "pdp:", time.Hour)
		if err != nil {
			log.Fatal(err)
		}
		defer reg.Close()
		registry = reg
		checks["redis"] = reg.Ping
	}

	sim := services.NewSimulator(repo, registry)
	router := api.NewRouter(repo, sim, checks)

	// Simulations run synchronously inside the request, so writes get a generous timeout.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
