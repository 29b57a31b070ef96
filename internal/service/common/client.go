//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/pbconv"
)

// Client wraps the gRPC SecurityService client with domain-typed helpers.
type Client struct {
	// conn is the underlying gRPC connection to the security server.
	conn *grpc.ClientConn
	// api is the SecurityService client stub.
	api api.SecurityServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is sent with every call when set.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sends the actor identity with every call.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the security server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial security server: %w", err)
	}

	client := NewClient(conn, opts...)
	client.conn = conn

	return client, nil
}

// NewClient wraps an existing connection. Close does not close it.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		api:         api.NewSecurityServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Status retrieves the current snapshot.
func (c *Client) Status(ctx context.Context) (*domain.Snapshot, error) {
	return c.snapshotCall(ctx, "get status", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.GetStatus(ctx, new(emptypb.Empty))
	})
}

// SetArmingStatus changes the arming mode.
func (c *Client) SetArmingStatus(ctx context.Context, arming domain.ArmingStatus) (*domain.Snapshot, error) {
	request := &structpb.Struct{Fields: map[string]*structpb.Value{
		pbconv.FieldArmingStatus: structpb.NewStringValue(arming.String()),
	}}

	return c.snapshotCall(ctx, "set arming status", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.SetArmingStatus(ctx, request)
	})
}

// AddSensor registers a new inactive sensor.
func (c *Client) AddSensor(ctx context.Context, sensor domain.Sensor) (*domain.Snapshot, error) {
	return c.sensorCall(ctx, "add sensor", sensor, c.api.AddSensor)
}

// RemoveSensor deletes a sensor.
func (c *Client) RemoveSensor(ctx context.Context, sensor domain.Sensor) (*domain.Snapshot, error) {
	return c.sensorCall(ctx, "remove sensor", sensor, c.api.RemoveSensor)
}

// SetSensorActive activates or deactivates a sensor.
func (c *Client) SetSensorActive(ctx context.Context, sensor domain.Sensor, active bool) (*domain.Snapshot, error) {
	sensor.Active = active

	return c.sensorCall(ctx, "change sensor activation", sensor, c.api.ChangeSensorActivation)
}

// ProcessImage submits a camera image and reports whether it contained a cat.
func (c *Client) ProcessImage(ctx context.Context, image []byte) (bool, *domain.Snapshot, error) {
	var detected bool

	snapshot, err := c.snapshotCall(ctx, "process image", func(ctx context.Context) (*structpb.Struct, error) {
		response, err := c.api.ProcessImage(ctx, wrapperspb.Bytes(image))
		if err != nil {
			return nil, err
		}

		detected = response.GetFields()[pbconv.FieldCatDetected].GetBoolValue()

		return response, nil
	})
	if err != nil {
		return false, nil, err
	}

	return detected, snapshot, nil
}

// Watch calls handle for every status event until ctx is canceled or the stream ends.
// The call timeout does not apply.
func (c *Client) Watch(ctx context.Context, handle func(*pbconv.Event) error) error {
	ctx, cancel := context.WithCancel(c.withActor(ctx))
	defer cancel()

	stream, err := c.api.WatchStatus(ctx, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("watch status: %w", err)
	}

	for {
		message, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("watch status: %w", err)
		}

		event, err := pbconv.EventFromStruct(message)
		if err != nil {
			return fmt.Errorf("decode status event: %w", err)
		}

		if err = handle(event); err != nil {
			return err
		}
	}
}

func (c *Client) sensorCall(
	ctx context.Context,
	operation string,
	sensor domain.Sensor,
	call func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error),
) (*domain.Snapshot, error) {
	request, err := pbconv.SensorToStruct(sensor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return c.snapshotCall(ctx, operation, func(ctx context.Context) (*structpb.Struct, error) {
		return call(ctx, request)
	})
}

func (c *Client) snapshotCall(
	ctx context.Context,
	operation string,
	call func(context.Context) (*structpb.Struct, error),
) (*domain.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := call(callCtx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	snapshot, err := pbconv.SnapshotFromStruct(response)
	if err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", operation, err)
	}

	return snapshot, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = c.withActor(ctx)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *Client) withActor(ctx context.Context) context.Context {
	if c.actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, api.ActorMetadataKey, c.actor.String())
}
