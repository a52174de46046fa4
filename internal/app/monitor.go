package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/ratelimit"
)

// MonitoringHandler serves /health, /stats and the Prometheus /metrics endpoint.
// budget may be nil; /stats then reports unlimited generation.
func MonitoringHandler(budget *ratelimit.Budget) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/stats", statsHandler(budget))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func startMonitoringServer(ctx context.Context, port string, budget *ratelimit.Budget) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           MonitoringHandler(budget),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting monitoring server", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response)
}

// statsHandler adds the remaining generation budget (-1 = unlimited) to the run stats.
func statsHandler(budget *ratelimit.Budget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := metrics.Global.GetStats()
		stats["ai_requests_remaining"] = budget.Remaining()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}
}
