package security

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/pbconv"
	"github.com/oshokin/catpoint/internal/service/security"
)

// DefaultWatchBuffer is the number of events a slow watcher may lag behind.
const DefaultWatchBuffer = 64

// errSensorNotFound is returned when a request names a sensor that is not stored.
var errSensorNotFound = errors.New("sensor not found")

// Server implements SecurityServiceServer over a guarded security service.
type Server struct {
	// guard serializes access to the security service.
	guard *security.Guard
	// watchBuffer is the per-stream event buffer size.
	watchBuffer int
	// stopping is closed by Stop to end every watch stream.
	stopping chan struct{}
	stopOnce sync.Once
}

// Option configures the server.
type Option func(*Server)

// WithWatchBuffer sets the per-stream event buffer size.
func WithWatchBuffer(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.watchBuffer = size
		}
	}
}

// NewServer wires the guarded service into a gRPC handler.
func NewServer(guard *security.Guard, opts ...Option) *Server {
	s := &Server{
		guard:       guard,
		watchBuffer: DefaultWatchBuffer,
		stopping:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Stop ends every open watch stream so that a graceful stop can complete.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopping)
	})
}

// GetStatus returns the current snapshot.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.snapshotAfter(ctx, nil)
}

// SetArmingStatus changes the arming mode.
func (s *Server) SetArmingStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	arming, err := pbconv.ArmingStatusFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return s.snapshotAfter(ctx, func(svc *security.Service) error {
		return svc.SetArmingStatus(ctx, arming)
	})
}

// AddSensor stores a new inactive sensor.
func (s *Server) AddSensor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sensor, err := pbconv.SensorFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sensor.Active = false

	return s.snapshotAfter(ctx, func(svc *security.Service) error {
		return svc.AddSensor(ctx, sensor)
	})
}

// RemoveSensor deletes a stored sensor.
func (s *Server) RemoveSensor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sensor, err := pbconv.SensorFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return s.snapshotAfter(ctx, func(svc *security.Service) error {
		stored, err := findSensor(ctx, svc, sensor.Key())
		if err != nil {
			return err
		}

		return svc.RemoveSensor(ctx, stored)
	})
}

// ChangeSensorActivation sets the active flag of a stored sensor.
func (s *Server) ChangeSensorActivation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requested, err := pbconv.SensorFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return s.snapshotAfter(ctx, func(svc *security.Service) error {
		stored, err := findSensor(ctx, svc, requested.Key())
		if err != nil {
			return err
		}

		return svc.ChangeSensorActivationStatus(ctx, &stored, requested.Active)
	})
}

// ProcessImage classifies a camera image and returns the snapshot with the result.
func (s *Server) ProcessImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if len(req.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "image is required")
	}

	var (
		detected bool
		snapshot *domain.Snapshot
	)

	err := s.guard.Do(func(svc *security.Service) error {
		var err error

		if detected, err = svc.ProcessImage(ctx, req.GetValue()); err != nil {
			return err
		}

		snapshot, err = svc.Snapshot(ctx)

		return err
	})
	if err != nil {
		return nil, toStatusError(ctx, err)
	}

	fields := pbconv.SnapshotFields(snapshot)
	fields[pbconv.FieldCatDetected] = detected

	response, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, toStatusError(ctx, err)
	}

	return response, nil
}

// WatchStatus streams the current alarm status, then every notification until
// the client goes away.
func (s *Server) WatchStatus(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	listener := newStreamListener(s.watchBuffer)

	err := s.guard.Do(func(svc *security.Service) error {
		current, err := svc.AlarmStatus(ctx)
		if err != nil {
			return err
		}

		listener.OnAlarmStatusChanged(ctx, current)
		svc.AddStatusListener(listener)

		return nil
	})
	if err != nil {
		return toStatusError(ctx, err)
	}

	defer func() {
		_ = s.guard.Do(func(svc *security.Service) error {
			svc.RemoveStatusListener(listener)
			return nil
		})
	}()

	logger.Debug(ctx, "Status watcher connected")

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, "Status watcher disconnected")
			return nil
		case <-s.stopping:
			return status.Error(codes.Unavailable, "server is shutting down")
		case event := <-listener.events:
			if err := stream.Send(event); err != nil {
				return err
			}
		}
	}
}

// snapshotAfter runs fn, if any, and reads the snapshot under the same lock.
func (s *Server) snapshotAfter(ctx context.Context, fn func(*security.Service) error) (*structpb.Struct, error) {
	var snapshot *domain.Snapshot

	err := s.guard.Do(func(svc *security.Service) error {
		if fn != nil {
			if err := fn(svc); err != nil {
				return err
			}
		}

		var err error

		snapshot, err = svc.Snapshot(ctx)

		return err
	})
	if err != nil {
		return nil, toStatusError(ctx, err)
	}

	response, err := pbconv.SnapshotToStruct(snapshot)
	if err != nil {
		return nil, toStatusError(ctx, err)
	}

	return response, nil
}

func findSensor(ctx context.Context, svc *security.Service, key domain.SensorKey) (domain.Sensor, error) {
	sensors, err := svc.Sensors(ctx)
	if err != nil {
		return domain.Sensor{}, err
	}

	for _, sensor := range sensors {
		if sensor.Key() == key {
			return sensor, nil
		}
	}

	return domain.Sensor{}, status.Errorf(codes.NotFound, "%s: %s (%s)", errSensorNotFound, key.Name, key.Type)
}

// toStatusError keeps gRPC statuses and hides everything else behind Internal.
func toStatusError(ctx context.Context, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	logger.ErrorKV(ctx, "Security service call failed", "error", err)

	return status.Error(codes.Internal, "security service failure")
}

// streamListener forwards notifications to a watch stream without blocking the caller.
type streamListener struct {
	events chan *structpb.Struct
}

func newStreamListener(size int) *streamListener {
	return &streamListener{events: make(chan *structpb.Struct, size)}
}

// OnAlarmStatusChanged queues an alarm status event.
func (l *streamListener) OnAlarmStatusChanged(ctx context.Context, alarmStatus domain.AlarmStatus) {
	l.offer(ctx, pbconv.AlarmStatusEvent(alarmStatus))
}

// OnCatDetected queues a cat detection event.
func (l *streamListener) OnCatDetected(ctx context.Context, detected bool) {
	l.offer(ctx, pbconv.CatDetectedEvent(detected))
}

func (l *streamListener) offer(ctx context.Context, event *structpb.Struct) {
	select {
	case l.events <- event:
	default:
		logger.Warn(ctx, "Status watcher is too slow, event dropped")
	}
}
