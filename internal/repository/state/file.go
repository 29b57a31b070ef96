package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/pbconv"
)

// FileRepository persists the alarm state to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) of a
// structpb.Struct, the same shape the gRPC API returns.
// Every call reads the file, so external edits are picked up immediately.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// AlarmStatus returns the current alarm status.
func (r *FileRepository) AlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	snapshot, err := r.read(ctx)
	if err != nil {
		return domain.NoAlarm, err
	}

	return snapshot.AlarmStatus, nil
}

// SetAlarmStatus stores the alarm status.
func (r *FileRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	return r.modify(ctx, func(snapshot *domain.Snapshot) {
		snapshot.AlarmStatus = status
	})
}

// ArmingStatus returns the current arming status.
func (r *FileRepository) ArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	snapshot, err := r.read(ctx)
	if err != nil {
		return domain.Disarmed, err
	}

	return snapshot.ArmingStatus, nil
}

// SetArmingStatus stores the arming status.
func (r *FileRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	return r.modify(ctx, func(snapshot *domain.Snapshot) {
		snapshot.ArmingStatus = status
	})
}

// Sensors returns the stored sensors.
func (r *FileRepository) Sensors(ctx context.Context) ([]domain.Sensor, error) {
	snapshot, err := r.read(ctx)
	if err != nil {
		return nil, err
	}

	return snapshot.Sensors, nil
}

// AddSensor inserts the sensor unless it is already present.
func (r *FileRepository) AddSensor(ctx context.Context, sensor domain.Sensor) error {
	return r.modify(ctx, func(snapshot *domain.Snapshot) {
		snapshot.AddSensor(sensor)
	})
}

// RemoveSensor deletes the sensor.
func (r *FileRepository) RemoveSensor(ctx context.Context, sensor domain.Sensor) error {
	return r.modify(ctx, func(snapshot *domain.Snapshot) {
		snapshot.RemoveSensor(sensor.Key())
	})
}

// UpdateSensor upserts the sensor.
func (r *FileRepository) UpdateSensor(ctx context.Context, sensor domain.Sensor) error {
	return r.modify(ctx, func(snapshot *domain.Snapshot) {
		snapshot.UpdateSensor(sensor)
	})
}

// read loads the snapshot under the lock.
func (r *FileRepository) read(_ context.Context) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// modify applies fn to the stored snapshot and writes it back.
func (r *FileRepository) modify(_ context.Context, fn func(snapshot *domain.Snapshot)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, err := r.load()
	if err != nil {
		return err
	}

	fn(snapshot)

	return r.save(snapshot)
}

// load reads the state from disk. A missing file yields the default state.
func (r *FileRepository) load() (*domain.Snapshot, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return new(domain.Snapshot), nil
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var message structpb.Struct
	if err = protojson.Unmarshal(contents, &message); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	snapshot, err := pbconv.SnapshotFromStruct(&message)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return snapshot, nil
}

// save writes the state to disk using JSON representation.
func (r *FileRepository) save(snapshot *domain.Snapshot) error {
	message, err := pbconv.SnapshotToStruct(snapshot)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
