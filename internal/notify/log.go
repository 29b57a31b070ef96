package notify

import (
	"context"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
)

// LogListener writes one structured log line per event.
type LogListener struct{}

// NewLogListener creates a log listener.
func NewLogListener() *LogListener {
	return new(LogListener)
}

// OnAlarmStatusChanged logs the new status, as a warning when it is ALARM.
func (l *LogListener) OnAlarmStatusChanged(ctx context.Context, status domain.AlarmStatus) {
	if status == domain.Alarm {
		logger.WarnKV(ctx, "Alarm raised", "alarm_status", status)
		return
	}

	logger.InfoKV(ctx, "Alarm status notification", "alarm_status", status)
}

// OnCatDetected logs the detection result.
func (l *LogListener) OnCatDetected(ctx context.Context, detected bool) {
	logger.InfoKV(ctx, "Cat detection notification", "cat_detected", detected)
}
