/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load environment configuration (.env supported)
  2. Parse command-line flags (flags override environment)
  3. Resolve the operating timezone
  4. Open the SQLite store
  5. Wire lifecycle, leave service, engine, aggregator, handlers
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port
  -db      SQLite database path (":memory:" for in-memory)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/fleet-payroll/api"
	"github.com/warp/fleet-payroll/civil"
	"github.com/warp/fleet-payroll/config"
	"github.com/warp/fleet-payroll/leave"
	"github.com/warp/fleet-payroll/payroll"
	"github.com/warp/fleet-payroll/shift"
	"github.com/warp/fleet-payroll/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to resolve timezone: %v", err)
	}
	clock := civil.NewClock(loc)

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	engine := payroll.NewEngine(store, store, cfg.Payroll)
	handler := &api.Handler{
		Drivers:    store,
		Shifts:     store,
		Lifecycle:  shift.NewLifecycle(store, clock),
		Leaves:     leave.NewService(store, clock),
		LeaveStore: store,
		Engine:     engine,
		Aggregator: payroll.NewAggregator(store, store, engine, clock),
		Metrics:    api.NewMetrics(),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Fleet payroll server starting on http://localhost:%d (timezone %s)", *port, cfg.Timezone)
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
