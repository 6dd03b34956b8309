package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/adapters/cache"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/adapters/distance"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/api"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/config"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/platform/db"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (OSRM, Postgres cache) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// The travel-time cache is optional: without DATABASE_URL every request
	// pays the full OSRM table call.
	var travelTimeCache *cache.SQLTravelTimeCache
	if cfg.DatabaseURL != "" {
		pg, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()

		if err := cache.InitSchema(pg); err != nil {
			log.Fatal(err)
		}
		travelTimeCache = cache.NewSQLTravelTimeCache(pg)
	}

	provider, err := distance.NewOSRMTravelTimeProvider(cfg.OSRMBaseURL, travelTimeCache)
	if err != nil {
		log.Fatal(err)
	}

	planner := &services.Planner{Provider: provider, Cfg: cfg}
	router := api.NewRouter(planner)

	// Write timeout leaves headroom for a full start-day solve budget.
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.DefaultTimeLimit + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
