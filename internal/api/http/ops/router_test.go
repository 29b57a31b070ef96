package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/notify"
	repo "github.com/oshokin/catpoint/internal/repository/state"
	"github.com/oshokin/catpoint/internal/service/security"
)

var errTestStore = errors.New("disk unplugged")

// staticClassifier never sees a cat.
type staticClassifier struct{}

// ImageContainsCat always returns false.
func (staticClassifier) ImageContainsCat(context.Context, []byte, float32) (bool, error) {
	return false, nil
}

// brokenRepository fails every sensor read.
type brokenRepository struct {
	*repo.MemoryRepository
}

// Sensors always fails.
func (brokenRepository) Sensors(context.Context) ([]domain.Sensor, error) {
	return nil, errTestStore
}

// serve performs a GET against the router.
func serve(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

	return recorder
}

// TestRouter_HealthAndStatus verifies the liveness probe and the JSON snapshot.
func TestRouter_HealthAndStatus(t *testing.T) {
	t.Parallel()

	store := repo.NewMemoryRepository(domain.NewSensor("Front Door", domain.Door))
	service := security.New(store, staticClassifier{})
	require.NoError(t, service.SetArmingStatus(context.Background(), domain.ArmedAway))

	router := NewRouter(security.NewGuard(service), prometheus.NewRegistry())

	health := serve(t, router, HealthPath)
	require.Equal(t, http.StatusOK, health.Code)
	require.Equal(t, "ok", health.Body.String())

	status := serve(t, router, StatusPath)
	require.Equal(t, http.StatusOK, status.Code)
	require.Equal(t, "application/json", status.Header().Get("Content-Type"))
	require.JSONEq(t, `{
		"alarm_status": "ALARM",
		"arming_status": "ARMED_AWAY",
		"sensors": [{"name": "Front Door", "type": "DOOR", "active": false}]
	}`, status.Body.String())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, StatusPath, nil))
	require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

// TestRouter_EmptySensors verifies an empty sensor set is encoded as an array.
func TestRouter_EmptySensors(t *testing.T) {
	t.Parallel()

	service := security.New(repo.NewMemoryRepository(), staticClassifier{})
	router := NewRouter(security.NewGuard(service), prometheus.NewRegistry())

	status := serve(t, router, StatusPath)
	require.Equal(t, http.StatusOK, status.Code)
	require.JSONEq(t, `{"alarm_status": "NO_ALARM", "arming_status": "DISARMED", "sensors": []}`, status.Body.String())
}

// TestRouter_StatusFailure verifies store faults produce a 500 response.
func TestRouter_StatusFailure(t *testing.T) {
	t.Parallel()

	service := security.New(brokenRepository{repo.NewMemoryRepository()}, staticClassifier{})
	router := NewRouter(security.NewGuard(service), prometheus.NewRegistry())

	require.Equal(t, http.StatusInternalServerError, serve(t, router, StatusPath).Code)
}

// TestRouter_Metrics verifies the listener metrics are exported.
func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	metrics, err := notify.NewMetricsListener(registry)
	require.NoError(t, err)

	service := security.New(repo.NewMemoryRepository(), staticClassifier{})
	service.AddStatusListener(metrics)
	require.NoError(t, service.SetArmingStatus(context.Background(), domain.ArmedHome))

	router := NewRouter(security.NewGuard(service), registry)

	response := serve(t, router, MetricsPath)
	require.Equal(t, http.StatusOK, response.Code)

	body := response.Body.String()
	require.Contains(t, body, `catpoint_alarm_status{status="ALARM"} 1`)
	require.Contains(t, body, `catpoint_alarm_status_changes_total{status="ALARM"} 1`)
}
