package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startAuxServer runs the auxiliary HTTP server exposing /health and the
// Prometheus /metrics endpoint for the duration of the run.
func (a *App) startAuxServer(port int) {
	a.logger.Debug("Configuring auxiliary HTTP server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Auxiliary server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Auxiliary server failed", "error", err)
		}
	}()
}
