package state

import (
	"context"
	"slices"
	"sync"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// MemoryRepository keeps the state in process memory. State is lost on restart.
type MemoryRepository struct {
	// snapshot is the current state.
	snapshot domain.Snapshot
	// mu protects concurrent access to the snapshot.
	mu sync.RWMutex
}

// NewMemoryRepository creates a repository seeded with the given sensors.
func NewMemoryRepository(sensors ...domain.Sensor) *MemoryRepository {
	r := new(MemoryRepository)

	for _, sensor := range sensors {
		r.snapshot.AddSensor(sensor)
	}

	return r
}

// AlarmStatus returns the current alarm status.
func (r *MemoryRepository) AlarmStatus(context.Context) (domain.AlarmStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot.AlarmStatus, nil
}

// SetAlarmStatus stores the alarm status.
func (r *MemoryRepository) SetAlarmStatus(_ context.Context, status domain.AlarmStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.AlarmStatus = status

	return nil
}

// ArmingStatus returns the current arming status.
func (r *MemoryRepository) ArmingStatus(context.Context) (domain.ArmingStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot.ArmingStatus, nil
}

// SetArmingStatus stores the arming status.
func (r *MemoryRepository) SetArmingStatus(_ context.Context, status domain.ArmingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.ArmingStatus = status

	return nil
}

// Sensors returns a copy of the sensor set.
func (r *MemoryRepository) Sensors(context.Context) ([]domain.Sensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.snapshot.Sensors), nil
}

// AddSensor inserts the sensor unless it is already present.
func (r *MemoryRepository) AddSensor(_ context.Context, sensor domain.Sensor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.AddSensor(sensor)

	return nil
}

// RemoveSensor deletes the sensor.
func (r *MemoryRepository) RemoveSensor(_ context.Context, sensor domain.Sensor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.RemoveSensor(sensor.Key())

	return nil
}

// UpdateSensor upserts the sensor.
func (r *MemoryRepository) UpdateSensor(_ context.Context, sensor domain.Sensor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.UpdateSensor(sensor)

	return nil
}
