package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

const (
	metricsNamespace = "catpoint"
	statusLabel      = "status"
	detectedLabel    = "detected"
)

// MetricsListener exports alarm events as Prometheus metrics.
type MetricsListener struct {
	// statusChanges counts alarm status writes per status.
	statusChanges *prometheus.CounterVec
	// status is 1 for the current alarm status and 0 for the others.
	status *prometheus.GaugeVec
	// catDetections counts processed images per detection result.
	catDetections *prometheus.CounterVec
}

// NewMetricsListener creates the metrics and registers them with reg.
func NewMetricsListener(reg prometheus.Registerer) (*MetricsListener, error) {
	l := &MetricsListener{
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "alarm_status_changes_total",
			Help:      "Number of alarm status writes by status.",
		}, []string{statusLabel}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "alarm_status",
			Help:      "Current alarm status (1 for the active status).",
		}, []string{statusLabel}),
		catDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cat_detections_total",
			Help:      "Number of processed camera images by detection result.",
		}, []string{detectedLabel}),
	}

	for _, collector := range []prometheus.Collector{l.statusChanges, l.status, l.catDetections} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	l.setStatus(domain.NoAlarm)

	return l, nil
}

// OnAlarmStatusChanged counts the write and moves the status gauge.
func (l *MetricsListener) OnAlarmStatusChanged(_ context.Context, status domain.AlarmStatus) {
	l.statusChanges.WithLabelValues(status.String()).Inc()
	l.setStatus(status)
}

// OnCatDetected counts the processed image.
func (l *MetricsListener) OnCatDetected(_ context.Context, detected bool) {
	l.catDetections.WithLabelValues(strconv.FormatBool(detected)).Inc()
}

// Sync sets the status gauge without counting a change, e.g. after a restart.
func (l *MetricsListener) Sync(status domain.AlarmStatus) {
	l.setStatus(status)
}

func (l *MetricsListener) setStatus(current domain.AlarmStatus) {
	for _, status := range domain.AlarmStatuses() {
		value := 0.0
		if status == current {
			value = 1
		}

		l.status.WithLabelValues(status.String()).Set(value)
	}
}
