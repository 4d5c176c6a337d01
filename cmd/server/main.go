package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitpot/splitpot/internal/api"
	"github.com/splitpot/splitpot/internal/auth"
	"github.com/splitpot/splitpot/internal/events"
	"github.com/splitpot/splitpot/internal/ledger"
	"github.com/splitpot/splitpot/internal/metrics"
	"github.com/splitpot/splitpot/internal/store/sqlite"
	"github.com/splitpot/splitpot/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	addr := getEnv("ADDR", ":8080")
	dbPath := getEnv("DB_PATH", "./data/splitpot.db")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	kv, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	slog.Info("Storage initialized", "database", dbPath)

	svc := ledger.New(kv,
		ledger.WithPublisher(events.LogPublisher{}),
		ledger.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)

	handler := api.NewHandler(
		svc,
		auth.NewAuthenticator(kv),
		auth.NewJWTManager(jwtSecret, tokenDuration),
	)
	router := api.NewRouter(handler, prometheus.DefaultGatherer)

	// h2c serves HTTP/2 without TLS for clients that want multiplexing
	// behind a terminating proxy.
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
