package alarm

import (
	"errors"
	"fmt"
	"strings"
)

// AlarmStatus is the current assessed threat level of the premises.
//
//nolint:revive // alarm.AlarmStatus reads better than alarm.Status next to ArmingStatus.
type AlarmStatus int

// AlarmStatus values. The zero value is NoAlarm.
const (
	NoAlarm AlarmStatus = iota
	PendingAlarm
	Alarm
)

// alarmStatusCount is the number of AlarmStatus values.
const alarmStatusCount = 3

// ArmingStatus is the operator-selected monitoring mode.
type ArmingStatus int

// ArmingStatus values. The zero value is Disarmed.
const (
	Disarmed ArmingStatus = iota
	ArmedHome
	ArmedAway
)

// armingStatusCount is the number of ArmingStatus values.
const armingStatusCount = 3

// SensorType is the kind of detector a sensor represents.
type SensorType int

// SensorType values.
const (
	Door SensorType = iota
	Window
	Motion
)

var (
	// ErrUnknownAlarmStatus is returned when parsing an unsupported alarm status.
	ErrUnknownAlarmStatus = errors.New("unknown alarm status")
	// ErrUnknownArmingStatus is returned when parsing an unsupported arming status.
	ErrUnknownArmingStatus = errors.New("unknown arming status")
	// ErrUnknownSensorType is returned when parsing an unsupported sensor type.
	ErrUnknownSensorType = errors.New("unknown sensor type")
)

//nolint:gochecknoglobals // Lookup tables for enum names.
var (
	alarmStatusNames = [...]string{
		NoAlarm:      "NO_ALARM",
		PendingAlarm: "PENDING_ALARM",
		Alarm:        "ALARM",
	}
	armingStatusNames = [...]string{
		Disarmed:  "DISARMED",
		ArmedHome: "ARMED_HOME",
		ArmedAway: "ARMED_AWAY",
	}
	sensorTypeNames = [...]string{
		Door:   "DOOR",
		Window: "WINDOW",
		Motion: "MOTION",
	}
)

// String returns the canonical name, e.g. "PENDING_ALARM".
func (s AlarmStatus) String() string {
	return enumName(alarmStatusNames[:], int(s), "AlarmStatus")
}

// Valid reports whether s is one of the declared values.
func (s AlarmStatus) Valid() bool {
	return s >= NoAlarm && s <= Alarm
}

// MarshalText implements encoding.TextMarshaler.
func (s AlarmStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlarmStatus, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *AlarmStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseAlarmStatus(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// AlarmStatuses returns every AlarmStatus in declaration order.
func AlarmStatuses() []AlarmStatus {
	return []AlarmStatus{NoAlarm, PendingAlarm, Alarm}
}

// ParseAlarmStatus converts a name such as "alarm" or "NO_ALARM" into an AlarmStatus.
func ParseAlarmStatus(s string) (AlarmStatus, error) {
	idx, ok := enumIndex(alarmStatusNames[:], s)
	if !ok {
		return NoAlarm, fmt.Errorf("%w: %q", ErrUnknownAlarmStatus, s)
	}

	return AlarmStatus(idx), nil
}

// String returns the canonical name, e.g. "ARMED_HOME".
func (s ArmingStatus) String() string {
	return enumName(armingStatusNames[:], int(s), "ArmingStatus")
}

// Valid reports whether s is one of the declared values.
func (s ArmingStatus) Valid() bool {
	return s >= Disarmed && s <= ArmedAway
}

// IsArmed reports whether monitoring is active in any mode.
func (s ArmingStatus) IsArmed() bool {
	return s == ArmedHome || s == ArmedAway
}

// MarshalText implements encoding.TextMarshaler.
func (s ArmingStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArmingStatus, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ArmingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseArmingStatus(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseArmingStatus converts a name such as "armed_away" into an ArmingStatus.
func ParseArmingStatus(s string) (ArmingStatus, error) {
	idx, ok := enumIndex(armingStatusNames[:], s)
	if !ok {
		return Disarmed, fmt.Errorf("%w: %q", ErrUnknownArmingStatus, s)
	}

	return ArmingStatus(idx), nil
}

// String returns the canonical name, e.g. "WINDOW".
func (t SensorType) String() string {
	return enumName(sensorTypeNames[:], int(t), "SensorType")
}

// Valid reports whether t is one of the declared values.
func (t SensorType) Valid() bool {
	return t >= Door && t <= Motion
}

// MarshalText implements encoding.TextMarshaler.
func (t SensorType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSensorType, int(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SensorType) UnmarshalText(text []byte) error {
	parsed, err := ParseSensorType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// ParseSensorType converts a name such as "door" into a SensorType.
func ParseSensorType(s string) (SensorType, error) {
	idx, ok := enumIndex(sensorTypeNames[:], s)
	if !ok {
		return Door, fmt.Errorf("%w: %q", ErrUnknownSensorType, s)
	}

	return SensorType(idx), nil
}

// enumName returns names[idx] or a Go-syntax fallback for out-of-range values.
func enumName(names []string, idx int, typeName string) string {
	if idx < 0 || idx >= len(names) {
		return fmt.Sprintf("%s(%d)", typeName, idx)
	}

	return names[idx]
}

// enumIndex finds s among names ignoring case and surrounding spaces.
// Dashes are accepted in place of underscores ("armed-home").
func enumIndex(names []string, s string) (int, bool) {
	s = strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")

	for idx, name := range names {
		if name == s {
			return idx, true
		}
	}

	return 0, false
}
