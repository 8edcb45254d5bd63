/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the cap-engine server: configuration, SQLite
  store, HTTP router, graceful shutdown.

CONFIGURATION:
  Environment variables (parsed first):
    PORT          HTTP server port (default: 8080)
    CAP_DB        SQLite database path (default: cap.db, ":memory:" ok)
    CORS_ORIGINS  Comma-separated allowed origins

  Command-line flags override the environment:
    -port    HTTP server port
    -db      SQLite database path
    -seed    Create the demo league if it does not exist

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/cap.db"
  CAP_DB=":memory:" PORT=3000 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/warp/cap-engine/api"
	"github.com/warp/cap-engine/league"
	"github.com/warp/cap-engine/store/sqlite"
)

type config struct {
	Port        int      `env:"PORT" envDefault:"8080"`
	DBPath      string   `env:"CAP_DB" envDefault:"cap.db"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}

	// Flags override environment.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seed := flag.Bool("seed", false, "create the demo league if it does not exist")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := seedDemoLeague(context.Background(), store); err != nil {
			log.Fatalf("Failed to seed demo league: %v", err)
		}
	}

	handler := api.NewHandler(store)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Cap engine listening on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedDemoLeague provisions the "demo" league for local development. A
// no-op when the league already exists.
func seedDemoLeague(ctx context.Context, store *sqlite.Store) error {
	const demoID = league.LeagueID("demo")

	if _, err := store.Rosters(ctx, demoID, ""); err == nil {
		return nil
	} else if !errors.Is(err, league.ErrLeagueNotFound) {
		return err
	}

	if err := store.CreateLeague(ctx, demoID, league.DefaultRules(), 2026); err != nil {
		return err
	}
	teams := []league.TeamInfo{
		{ID: "gridlocks", Name: "The Gridlocks", Players: []league.Player{
			{ID: "qb-1", Name: "Dalton Reyes", Position: league.PositionQB},
			{ID: "rb-1", Name: "Marcus Vell", Position: league.PositionRB},
			{ID: "wr-1", Name: "Theo Banks", Position: league.PositionWR},
		}},
		{ID: "blitzers", Name: "Backfield Blitzers", Players: []league.Player{
			{ID: "qb-2", Name: "Cole Harmon", Position: league.PositionQB},
			{ID: "te-1", Name: "Ivan Price", Position: league.PositionTE},
		}},
	}
	for _, t := range teams {
		if err := store.AddTeam(ctx, demoID, t); err != nil {
			return err
		}
	}
	contracts := []league.Contract{
		{TeamID: "gridlocks", PlayerID: "qb-1", LengthYears: 4, StartSeason: 2026,
			AnnualAmount: league.NewMoney(75), Status: league.StatusActive},
		{TeamID: "gridlocks", PlayerID: "rb-1", LengthYears: 2, StartSeason: 2026,
			AnnualAmount: league.NewMoney(40), Status: league.StatusActive},
		{TeamID: "blitzers", PlayerID: "qb-2", LengthYears: 3, StartSeason: 2026,
			AnnualAmount: league.NewMoney(60), Status: league.StatusActive},
	}
	for _, c := range contracts {
		if err := store.PutContract(ctx, demoID, c); err != nil {
			return err
		}
	}
	log.Printf("Seeded demo league %q", demoID)
	return nil
}
