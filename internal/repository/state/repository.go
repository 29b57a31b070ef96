package state

import (
	"context"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// Repository is the authoritative store of the alarm system state.
// Callers must not cache what it returns.
type Repository interface {
	AlarmStatus(ctx context.Context) (domain.AlarmStatus, error)
	SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error
	ArmingStatus(ctx context.Context) (domain.ArmingStatus, error)
	SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error
	// Sensors returns a sorted copy of the sensor set.
	Sensors(ctx context.Context) ([]domain.Sensor, error)
	// AddSensor is a no-op when a sensor with the same key exists.
	AddSensor(ctx context.Context, sensor domain.Sensor) error
	// RemoveSensor is a no-op when the sensor is unknown.
	RemoveSensor(ctx context.Context, sensor domain.Sensor) error
	// UpdateSensor replaces the sensor with the same key or inserts it.
	UpdateSensor(ctx context.Context, sensor domain.Sensor) error
}
