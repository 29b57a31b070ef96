package alarm

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// SensorKey identifies a sensor for set membership.
type SensorKey struct {
	// Name is the operator-facing label, e.g. "Front Door".
	Name string
	// Type is the detector kind.
	Type SensorType
}

// Sensor is a door, window or motion detector with a binary state.
type Sensor struct {
	// Name is the operator-facing label, unique together with Type.
	Name string `json:"name" yaml:"name"`
	// Type is the detector kind.
	Type SensorType `json:"type" yaml:"type"`
	// Active reports whether the detector is currently tripped.
	Active bool `json:"active" yaml:"active"`
}

// NewSensor returns an inactive sensor.
func NewSensor(name string, sensorType SensorType) Sensor {
	return Sensor{
		Name: strings.TrimSpace(name),
		Type: sensorType,
	}
}

// Key returns the identity of the sensor.
func (s Sensor) Key() SensorKey {
	return SensorKey{
		Name: s.Name,
		Type: s.Type,
	}
}

// compareSensors orders sensors by name, then by type.
func compareSensors(a, b Sensor) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}

	return cmp.Compare(a.Type, b.Type)
}

// SortSensors sorts sensors in place by name, then by type.
func SortSensors(sensors []Sensor) {
	slices.SortFunc(sensors, compareSensors)
}

// StatusListener receives alarm transitions and camera results.
// Implementations must be comparable (typically pointers) so that they can be
// registered and unregistered by identity.
type StatusListener interface {
	// OnAlarmStatusChanged is called after every alarm status write.
	OnAlarmStatusChanged(ctx context.Context, status AlarmStatus)
	// OnCatDetected is called once per processed image.
	OnCatDetected(ctx context.Context, detected bool)
}
