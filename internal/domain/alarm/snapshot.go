package alarm

import (
	"slices"

	"github.com/samber/lo"
)

// Snapshot is the complete durable state of one alarm system.
type Snapshot struct {
	// AlarmStatus is the current threat level.
	AlarmStatus AlarmStatus `json:"alarm_status" yaml:"alarm_status"`
	// ArmingStatus is the current monitoring mode.
	ArmingStatus ArmingStatus `json:"arming_status" yaml:"arming_status"`
	// Sensors is kept sorted by name, then type.
	Sensors []Sensor `json:"sensors" yaml:"sensors"`
}

// Clone returns a copy of the snapshot to avoid leaking internal references.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		AlarmStatus:  s.AlarmStatus,
		ArmingStatus: s.ArmingStatus,
		Sensors:      slices.Clone(s.Sensors),
	}
}

// AnySensorActive reports whether at least one sensor is tripped.
func (s *Snapshot) AnySensorActive() bool {
	return lo.SomeBy(s.Sensors, func(sensor Sensor) bool {
		return sensor.Active
	})
}

// AddSensor inserts the sensor unless one with the same key is present.
// It returns false when the set was left unchanged.
func (s *Snapshot) AddSensor(sensor Sensor) bool {
	if _, found := s.find(sensor.Key()); found {
		return false
	}

	s.Sensors = append(s.Sensors, sensor)
	SortSensors(s.Sensors)

	return true
}

// RemoveSensor deletes the sensor with the given key. Missing keys are ignored.
func (s *Snapshot) RemoveSensor(key SensorKey) bool {
	idx, found := s.find(key)
	if !found {
		return false
	}

	s.Sensors = slices.Delete(s.Sensors, idx, idx+1)

	return true
}

// UpdateSensor replaces the stored sensor with the same key, or inserts it.
func (s *Snapshot) UpdateSensor(sensor Sensor) {
	if idx, found := s.find(sensor.Key()); found {
		s.Sensors[idx] = sensor
		return
	}

	s.AddSensor(sensor)
}

// Sensor returns the stored sensor with the given key.
func (s *Snapshot) Sensor(key SensorKey) (Sensor, bool) {
	idx, found := s.find(key)
	if !found {
		return Sensor{}, false
	}

	return s.Sensors[idx], true
}

func (s *Snapshot) find(key SensorKey) (int, bool) {
	idx := slices.IndexFunc(s.Sensors, func(sensor Sensor) bool {
		return sensor.Key() == key
	})

	return idx, idx >= 0
}
