package security

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/oshokin/catpoint/internal/classifier"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	repo "github.com/oshokin/catpoint/internal/repository/state"
)

// CatConfidenceThreshold is the minimum confidence, in percent, for a camera cat.
const CatConfidenceThreshold float32 = 50.0

// Service decides the alarm status from sensor, camera and arming events.
// It keeps no durable state: every decision reads the repository first.
// Service is not safe for concurrent use; see Guard.
type Service struct {
	// repo is the authoritative state store.
	repo repo.Repository
	// classifier detects cats in camera images.
	classifier classifier.Classifier
	// listeners are notified in registration order.
	listeners []domain.StatusListener
}

// New creates a service over the given store and classifier.
func New(repository repo.Repository, detector classifier.Classifier) *Service {
	return &Service{
		repo:       repository,
		classifier: detector,
	}
}

// SetArmingStatus switches the monitoring mode.
// Arming always raises ALARM and disarming always clears it. Arming at home
// additionally resets every sensor to inactive. The new mode is stored last.
func (s *Service) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	current, err := s.repo.AlarmStatus(ctx)
	if err != nil {
		return fmt.Errorf("get alarm status: %w", err)
	}

	if err = s.apply(ctx, current, domain.TriggerArmingChanged, status); err != nil {
		return err
	}

	if status == domain.ArmedHome {
		if err = s.resetSensors(ctx); err != nil {
			return err
		}
	}

	if err = s.repo.SetArmingStatus(ctx, status); err != nil {
		return fmt.Errorf("set arming status: %w", err)
	}

	logger.InfoKV(ctx, "Arming status changed", "arming_status", status)

	return nil
}

// resetSensors marks every sensor active and deactivates it through the regular rules.
// It iterates a copy of the sensor set because each step writes to the store.
func (s *Service) resetSensors(ctx context.Context) error {
	sensors, err := s.repo.Sensors(ctx)
	if err != nil {
		return fmt.Errorf("get sensors: %w", err)
	}

	for i := range sensors {
		sensor := &sensors[i]
		sensor.Active = true

		if err = s.ChangeSensorActivationStatus(ctx, sensor, false); err != nil {
			return err
		}
	}

	return nil
}

// ChangeSensorActivationStatus records a sensor state change and applies the
// activation or deactivation rule when the flag actually flips. The sensor's
// Active field is updated and stored in every case.
func (s *Service) ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error {
	var err error

	switch {
	case !sensor.Active && active:
		err = s.handleSensorActivated(ctx)
	case sensor.Active && !active:
		err = s.handleSensorDeactivated(ctx, *sensor)
	}

	if err != nil {
		return err
	}

	sensor.Active = active

	if err = s.repo.UpdateSensor(ctx, *sensor); err != nil {
		return fmt.Errorf("update sensor %q: %w", sensor.Name, err)
	}

	logger.DebugKV(ctx, "Sensor updated", "sensor", sensor.Name, "type", sensor.Type, "active", active)

	return nil
}

func (s *Service) handleSensorActivated(ctx context.Context) error {
	current, arming, err := s.statuses(ctx)
	if err != nil {
		return err
	}

	return s.apply(ctx, current, domain.TriggerSensorActivated, arming)
}

func (s *Service) handleSensorDeactivated(ctx context.Context, sensor domain.Sensor) error {
	current, arming, err := s.statuses(ctx)
	if err != nil {
		return err
	}

	// The stored copy still reports active until the caller updates it, so a
	// pending alarm drops the sensor before checking the others.
	if arming.IsArmed() && current == domain.PendingAlarm {
		if err = s.repo.RemoveSensor(ctx, sensor); err != nil {
			return fmt.Errorf("remove sensor %q: %w", sensor.Name, err)
		}
	}

	anyActive, err := s.anySensorActive(ctx)
	if err != nil {
		return err
	}

	trigger := domain.TriggerLastSensorDeactivated
	if anyActive {
		trigger = domain.TriggerSensorDeactivated
	}

	return s.apply(ctx, current, trigger, arming)
}

// ProcessImage classifies a camera image and applies the cat detection rule.
// Every listener learns the detection result, whether or not the status moved.
func (s *Service) ProcessImage(ctx context.Context, image []byte) (bool, error) {
	detected, err := s.classifier.ImageContainsCat(ctx, image, CatConfidenceThreshold)
	if err != nil {
		return false, fmt.Errorf("classify image: %w", err)
	}

	trigger := domain.TriggerCatDetected

	if !detected {
		anyActive, err := s.anySensorActive(ctx)
		if err != nil {
			return false, err
		}

		trigger = domain.TriggerCatAbsentIdle
		if anyActive {
			trigger = domain.TriggerCatAbsent
		}
	}

	current, arming, err := s.statuses(ctx)
	if err != nil {
		return false, err
	}

	if err = s.apply(ctx, current, trigger, arming); err != nil {
		return false, err
	}

	logger.InfoKV(ctx, "Camera image processed", "cat_detected", detected)

	for _, listener := range s.snapshotListeners() {
		listener.OnCatDetected(ctx, detected)
	}

	return detected, nil
}

// SetAlarmStatus stores the status and notifies every listener.
// It is the only path that writes the alarm status.
func (s *Service) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if err := s.repo.SetAlarmStatus(ctx, status); err != nil {
		return fmt.Errorf("set alarm status: %w", err)
	}

	logger.InfoKV(ctx, "Alarm status changed", "alarm_status", status)

	for _, listener := range s.snapshotListeners() {
		listener.OnAlarmStatusChanged(ctx, status)
	}

	return nil
}

// AlarmStatus returns the stored alarm status.
func (s *Service) AlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	return s.repo.AlarmStatus(ctx)
}

// ArmingStatus returns the stored arming status.
func (s *Service) ArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	return s.repo.ArmingStatus(ctx)
}

// Sensors returns the stored sensors.
func (s *Service) Sensors(ctx context.Context) ([]domain.Sensor, error) {
	return s.repo.Sensors(ctx)
}

// AddSensor stores a new sensor.
func (s *Service) AddSensor(ctx context.Context, sensor domain.Sensor) error {
	return s.repo.AddSensor(ctx, sensor)
}

// RemoveSensor deletes a sensor.
func (s *Service) RemoveSensor(ctx context.Context, sensor domain.Sensor) error {
	return s.repo.RemoveSensor(ctx, sensor)
}

// Snapshot reads the complete state.
func (s *Service) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	alarmStatus, armingStatus, err := s.statuses(ctx)
	if err != nil {
		return nil, err
	}

	sensors, err := s.repo.Sensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sensors: %w", err)
	}

	return &domain.Snapshot{
		AlarmStatus:  alarmStatus,
		ArmingStatus: armingStatus,
		Sensors:      sensors,
	}, nil
}

// apply writes the status the transition table chooses, if any.
func (s *Service) apply(
	ctx context.Context,
	current domain.AlarmStatus,
	trigger domain.Trigger,
	arming domain.ArmingStatus,
) error {
	next, fires := domain.Next(current, trigger, arming)
	if !fires {
		logger.DebugKV(ctx, "No alarm transition", "trigger", trigger, "alarm_status", current, "arming_status", arming)
		return nil
	}

	return s.SetAlarmStatus(ctx, next)
}

func (s *Service) statuses(ctx context.Context) (domain.AlarmStatus, domain.ArmingStatus, error) {
	alarmStatus, err := s.repo.AlarmStatus(ctx)
	if err != nil {
		return domain.NoAlarm, domain.Disarmed, fmt.Errorf("get alarm status: %w", err)
	}

	armingStatus, err := s.repo.ArmingStatus(ctx)
	if err != nil {
		return domain.NoAlarm, domain.Disarmed, fmt.Errorf("get arming status: %w", err)
	}

	return alarmStatus, armingStatus, nil
}

func (s *Service) anySensorActive(ctx context.Context) (bool, error) {
	sensors, err := s.repo.Sensors(ctx)
	if err != nil {
		return false, fmt.Errorf("get sensors: %w", err)
	}

	return lo.SomeBy(sensors, func(sensor domain.Sensor) bool {
		return sensor.Active
	}), nil
}
