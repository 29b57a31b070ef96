package ops

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/service/security"
)

// Route paths.
const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
	StatusPath  = "/v1/status"
)

// Handlers serves the operational endpoints.
type Handlers struct {
	// guard serializes access to the security service.
	guard *security.Guard
	// gatherer provides the exported metrics.
	gatherer prometheus.Gatherer
}

// NewRouter returns a router with the health, metrics and status endpoints.
func NewRouter(guard *security.Guard, gatherer prometheus.Gatherer) *mux.Router {
	h := &Handlers{
		guard:    guard,
		gatherer: gatherer,
	}

	r := mux.NewRouter()
	r.HandleFunc(HealthPath, h.Health).Methods(http.MethodGet)
	r.Handle(MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc(StatusPath, h.Status).Methods(http.MethodGet)

	return r
}

// Health reports that the process is serving.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Status writes the current snapshot as JSON.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var snapshot *domain.Snapshot

	err := h.guard.Do(func(svc *security.Service) error {
		var err error

		snapshot, err = svc.Snapshot(ctx)

		return err
	})
	if err != nil {
		logger.ErrorKV(ctx, "Failed to read status", "error", err)
		http.Error(w, "status unavailable", http.StatusInternalServerError)

		return
	}

	if snapshot.Sensors == nil {
		snapshot.Sensors = []domain.Sensor{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(snapshot); err != nil {
		logger.WarnKV(ctx, "Failed to write status", "error", err)
	}
}
