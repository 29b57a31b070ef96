// Package pbconv converts alarm domain values to and from protobuf
// well-known messages (structpb.Struct) used on the wire and on disk.
package pbconv

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// Field names shared by the transport and the state file.
const (
	FieldAlarmStatus  = "alarm_status"
	FieldArmingStatus = "arming_status"
	FieldSensors      = "sensors"
	FieldName         = "name"
	FieldType         = "type"
	FieldActive       = "active"
	FieldCatDetected  = "cat_detected"
	FieldKind         = "kind"
)

var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField is returned when a field has the wrong shape.
	ErrInvalidField = errors.New("invalid field")
)

// SnapshotToStruct encodes a snapshot as {alarm_status, arming_status, sensors: [...]}.
func SnapshotToStruct(snapshot *domain.Snapshot) (*structpb.Struct, error) {
	return structpb.NewStruct(SnapshotFields(snapshot))
}

// SnapshotFields returns the snapshot as a plain map suitable for structpb.NewStruct.
func SnapshotFields(snapshot *domain.Snapshot) map[string]any {
	sensors := lo.Map(snapshot.Sensors, func(sensor domain.Sensor, _ int) any {
		return sensorFields(sensor)
	})

	return map[string]any{
		FieldAlarmStatus:  snapshot.AlarmStatus.String(),
		FieldArmingStatus: snapshot.ArmingStatus.String(),
		FieldSensors:      sensors,
	}
}

// SnapshotFromStruct decodes a snapshot produced by SnapshotToStruct.
func SnapshotFromStruct(message *structpb.Struct) (*domain.Snapshot, error) {
	fields := message.GetFields()

	alarmStatus, err := domain.ParseAlarmStatus(stringField(fields, FieldAlarmStatus))
	if err != nil {
		return nil, err
	}

	armingStatus, err := ArmingStatusFromStruct(message)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.Snapshot{
		AlarmStatus:  alarmStatus,
		ArmingStatus: armingStatus,
	}

	for idx, value := range fields[FieldSensors].GetListValue().GetValues() {
		item := value.GetStructValue()
		if item == nil {
			return nil, fmt.Errorf("%w: %s[%d]", ErrInvalidField, FieldSensors, idx)
		}

		sensor, err := SensorFromStruct(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", FieldSensors, idx, err)
		}

		snapshot.UpdateSensor(sensor)
	}

	return snapshot, nil
}

// SensorToStruct encodes a sensor as {name, type, active}.
func SensorToStruct(sensor domain.Sensor) (*structpb.Struct, error) {
	return structpb.NewStruct(sensorFields(sensor))
}

// SensorFromStruct decodes a sensor. The active field is optional and defaults to false.
func SensorFromStruct(message *structpb.Struct) (domain.Sensor, error) {
	fields := message.GetFields()

	sensorType, err := domain.ParseSensorType(stringField(fields, FieldType))
	if err != nil {
		return domain.Sensor{}, err
	}

	sensor := domain.NewSensor(stringField(fields, FieldName), sensorType)
	if sensor.Name == "" {
		return domain.Sensor{}, fmt.Errorf("%w: %s", ErrMissingField, FieldName)
	}

	sensor.Active = fields[FieldActive].GetBoolValue()

	return sensor, nil
}

// ArmingStatusFromStruct reads the arming_status field.
func ArmingStatusFromStruct(message *structpb.Struct) (domain.ArmingStatus, error) {
	return domain.ParseArmingStatus(stringField(message.GetFields(), FieldArmingStatus))
}

func sensorFields(sensor domain.Sensor) map[string]any {
	return map[string]any{
		FieldName:   sensor.Name,
		FieldType:   sensor.Type.String(),
		FieldActive: sensor.Active,
	}
}

func stringField(fields map[string]*structpb.Value, name string) string {
	return fields[name].GetStringValue()
}

// Event kinds carried in the kind field of status events.
const (
	KindAlarmStatus = "alarm_status"
	KindCatDetected = "cat_detected"
)

// Event is a single status notification.
type Event struct {
	// Kind is KindAlarmStatus or KindCatDetected.
	Kind string
	// AlarmStatus is meaningful for KindAlarmStatus.
	AlarmStatus domain.AlarmStatus
	// CatDetected is meaningful for KindCatDetected.
	CatDetected bool
}

// AlarmStatusEvent encodes an alarm status notification.
func AlarmStatusEvent(status domain.AlarmStatus) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldKind:        structpb.NewStringValue(KindAlarmStatus),
		FieldAlarmStatus: structpb.NewStringValue(status.String()),
	}}
}

// CatDetectedEvent encodes a cat detection notification.
func CatDetectedEvent(detected bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldKind:        structpb.NewStringValue(KindCatDetected),
		FieldCatDetected: structpb.NewBoolValue(detected),
	}}
}

// EventFromStruct decodes a notification built by AlarmStatusEvent or CatDetectedEvent.
func EventFromStruct(message *structpb.Struct) (*Event, error) {
	fields := message.GetFields()
	event := &Event{Kind: stringField(fields, FieldKind)}

	switch event.Kind {
	case KindAlarmStatus:
		status, err := domain.ParseAlarmStatus(stringField(fields, FieldAlarmStatus))
		if err != nil {
			return nil, err
		}

		event.AlarmStatus = status
	case KindCatDetected:
		value, found := fields[FieldCatDetected]
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldCatDetected)
		}

		event.CatDetected = value.GetBoolValue()
	default:
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidField, FieldKind, event.Kind)
	}

	return event, nil
}
