package integration

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/service/common"
	"github.com/oshokin/catpoint/internal/service/server"
)

// reserveAddress returns a free loopback address.
func reserveAddress(t *testing.T) string {
	t.Helper()

	lc := net.ListenConfig{}

	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// newPredictServer starts a fake prediction service that sees a cat in images containing "cat".
// Only requests from catpoint-server are answered.
func newPredictServer(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.UserAgent(), "catpoint-server/") {
			http.Error(w, "unknown client", http.StatusForbidden)
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		image, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if strings.Contains(string(image), "cat") {
			_, _ = w.Write([]byte(`{"labels":[{"name":"Cat","confidence":93.5}]}`))
			return
		}

		_, _ = w.Write([]byte(`{"labels":[{"name":"Sofa","confidence":88}]}`))
	}))

	t.Cleanup(srv.Close)

	return srv.URL
}

// startServer runs catpoint-server with a file store and returns a stop function
// that waits for the server to exit.
func startServer(t *testing.T, settings *config.Config) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, settings))

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	// Wait for the gRPC listener.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", settings.ServerAddress, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// dialClient connects a client that identifies itself as a test actor.
func dialClient(t *testing.T, address string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), address,
		common.WithCallTimeout(3*time.Second),
		common.WithActor(&common.Actor{Hostname: "test-hostname", Username: "test-user"}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// TestGRPC_Roundtrip runs the real server and exercises the client with on-disk persistence.
func TestGRPC_Roundtrip(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "state.json")
	settings := &config.Config{
		ServerAddress: reserveAddress(t),
		HTTPAddress:   reserveAddress(t),
		Timeout:       3 * time.Second,
		Store: config.Store{
			Backend:   config.StoreFile,
			StateFile: statePath,
		},
		Classifier: config.Classifier{
			Backend:  config.ClassifierHTTP,
			Endpoint: newPredictServer(t),
		},
	}

	stop := startServer(t, settings)

	ctx := context.Background()
	c := dialClient(t, settings.ServerAddress)

	door := domain.NewSensor("Front Door", domain.Door)

	_, err = c.AddSensor(ctx, door)
	require.NoError(t, err)

	snapshot, err := c.SetArmingStatus(ctx, domain.ArmedAway)
	require.NoError(t, err)
	require.Equal(t, domain.Alarm, snapshot.AlarmStatus)

	// A sofa and no active sensors clear the alarm.
	detected, snapshot, err := c.ProcessImage(ctx, []byte("sofa"))
	require.NoError(t, err)
	require.False(t, detected)
	require.Equal(t, domain.NoAlarm, snapshot.AlarmStatus)

	snapshot, err = c.SetSensorActive(ctx, door, true)
	require.NoError(t, err)
	require.Equal(t, domain.PendingAlarm, snapshot.AlarmStatus)

	_, err = c.SetArmingStatus(ctx, domain.ArmedHome)
	require.NoError(t, err)

	detected, snapshot, err = c.ProcessImage(ctx, []byte("a cat on the sofa"))
	require.NoError(t, err)
	require.True(t, detected)
	require.Equal(t, domain.Alarm, snapshot.AlarmStatus)
	require.False(t, snapshot.AnySensorActive())

	// Ops endpoint.
	ops := resty.New().SetBaseURL("http://" + settings.HTTPAddress)

	require.Eventually(t, func() bool {
		health, err := ops.R().SetContext(ctx).Get("/healthz")
		return err == nil && health.StatusCode() == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	metrics, err := ops.R().SetContext(ctx).Get("/metrics")
	require.NoError(t, err)
	require.Contains(t, metrics.String(), `catpoint_cat_detections_total{detected="true"} 1`)

	status, err := ops.R().SetContext(ctx).Get("/v1/status")
	require.NoError(t, err)
	require.Contains(t, status.String(), `"arming_status":"ARMED_HOME"`)

	stop()

	_, err = os.Stat(statePath)
	require.NoError(t, err)

	// The state survives a restart.
	stop = startServer(t, settings)
	defer stop()

	snapshot, err = dialClient(t, settings.ServerAddress).Status(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Alarm, snapshot.AlarmStatus)
	require.Equal(t, domain.ArmedHome, snapshot.ArmingStatus)
	require.Equal(t, []domain.Sensor{door}, snapshot.Sensors)
}
