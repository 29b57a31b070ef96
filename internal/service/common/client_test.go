//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/pbconv"
	repo "github.com/oshokin/catpoint/internal/repository/state"
	"github.com/oshokin/catpoint/internal/service/security"
)

// errStopWatching ends the watch loop in tests.
var errStopWatching = errors.New("enough events")

// catClassifier always sees a cat.
type catClassifier struct{}

// ImageContainsCat always returns true.
func (catClassifier) ImageContainsCat(context.Context, []byte, float32) (bool, error) {
	return true, nil
}

// newBufconnClient serves an in-memory security service and returns a client for it.
// The interceptor records the actor of every unary call.
func newBufconnClient(t *testing.T, actors *[]string, opts ...Option) *Client {
	t.Helper()

	service := security.New(repo.NewMemoryRepository(), catClassifier{})
	listener := bufconn.Listen(1 << 20)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			*actors = append(*actors, api.ActorFromContext(ctx))

			return handler(ctx, req)
		}))
	api.RegisterSecurityServiceServer(grpcServer, api.NewServer(security.NewGuard(service)))

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
	})

	return NewClient(conn, opts...)
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_Operations drives every unary call and checks the actor reaches the server.
func TestClient_Operations(t *testing.T) {
	t.Parallel()

	var actors []string

	ctx := context.Background()
	actor := &Actor{Hostname: "office", Username: "o.shokin"}
	client := newBufconnClient(t, &actors, WithActor(actor), WithCallTimeout(time.Second))
	door := domain.NewSensor("Front Door", domain.Door)

	snapshot, err := client.AddSensor(ctx, door)
	require.NoError(t, err)
	require.Equal(t, []domain.Sensor{door}, snapshot.Sensors)

	snapshot, err = client.SetArmingStatus(ctx, domain.ArmedAway)
	require.NoError(t, err)
	require.Equal(t, domain.Alarm, snapshot.AlarmStatus)

	snapshot, err = client.SetArmingStatus(ctx, domain.Disarmed)
	require.NoError(t, err)
	require.Equal(t, domain.NoAlarm, snapshot.AlarmStatus)

	snapshot, err = client.SetSensorActive(ctx, door, true)
	require.NoError(t, err)
	require.True(t, snapshot.AnySensorActive())

	detected, snapshot, err := client.ProcessImage(ctx, []byte("frame"))
	require.NoError(t, err)
	require.True(t, detected)
	require.Equal(t, domain.NoAlarm, snapshot.AlarmStatus)

	snapshot, err = client.RemoveSensor(ctx, door)
	require.NoError(t, err)
	require.Empty(t, snapshot.Sensors)

	snapshot, err = client.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Disarmed, snapshot.ArmingStatus)

	require.Len(t, actors, 7)

	for _, got := range actors {
		require.Equal(t, "o.shokin@office", got)
	}
}

// TestClient_Watch verifies events are decoded and a handler error ends the stream.
func TestClient_Watch(t *testing.T) {
	t.Parallel()

	var actors []string

	client := newBufconnClient(t, &actors)

	var events []*pbconv.Event

	err := client.Watch(context.Background(), func(event *pbconv.Event) error {
		events = append(events, event)

		return errStopWatching
	})
	require.ErrorIs(t, err, errStopWatching)
	require.Equal(t, []*pbconv.Event{{Kind: pbconv.KindAlarmStatus, AlarmStatus: domain.NoAlarm}}, events)
}
