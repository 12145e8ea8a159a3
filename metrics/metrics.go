// Package metrics exposes Prometheus-format metrics on a dedicated
// listener, plus the counters the vault service increments.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

// MetricsServer serves the /metrics endpoint on its own address so the
// scrape surface stays off the public API listener.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name and listen
// address. An empty address is allowed; the caller simply never starts it.
func New(name, addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	metrics.GetOrCreateCounter(fmt.Sprintf(`service_info{name=%q}`, name)).Set(1)

	return &MetricsServer{
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}, nil
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Operation counters, labeled by result so dashboards can separate
// upstream SDK failures from local validation ones.

func IncVaultCreated(vaultType string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vault_created_total{type=%q}`, vaultType)).Inc()
}

func IncVaultVerified() {
	metrics.GetOrCreateCounter(`vault_verified_total`).Inc()
}

func IncSignRequest(result string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vault_sign_total{result=%q}`, result)).Inc()
}

func IncExport(result string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`vault_export_total{result=%q}`, result)).Inc()
}
