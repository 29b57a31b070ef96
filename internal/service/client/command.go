package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/pbconv"
	"github.com/oshokin/catpoint/internal/service/common"
)

// Options configures how catpoint-ctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives the command output.
	Out io.Writer
}

// SensorAction is a sensor subcommand.
type SensorAction string

// Sensor actions.
const (
	SensorAdd        SensorAction = "add"
	SensorRemove     SensorAction = "remove"
	SensorActivate   SensorAction = "activate"
	SensorDeactivate SensorAction = "deactivate"
)

// errUnknownSensorAction is returned for unsupported sensor subcommands.
var errUnknownSensorAction = errors.New("unknown sensor action")

// ShowStatus prints the current state.
func ShowStatus(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(client *common.Client) error {
		snapshot, err := client.Status(ctx)
		if err != nil {
			return err
		}

		printSnapshot(opts.Out, snapshot)

		return nil
	})
}

// SetArmingStatus switches the monitoring mode, e.g. "armed_home".
func SetArmingStatus(ctx context.Context, opts *Options, arming string) error {
	status, err := domain.ParseArmingStatus(arming)
	if err != nil {
		return err
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		snapshot, err := client.SetArmingStatus(ctx, status)
		if err != nil {
			return err
		}

		printSnapshot(opts.Out, snapshot)

		return nil
	})
}

// ChangeSensor adds, removes, activates or deactivates a sensor.
func ChangeSensor(ctx context.Context, opts *Options, action SensorAction, name, sensorType string) error {
	parsedType, err := domain.ParseSensorType(sensorType)
	if err != nil {
		return err
	}

	sensor := domain.NewSensor(name, parsedType)

	return withClient(ctx, opts, func(client *common.Client) error {
		var snapshot *domain.Snapshot

		switch action {
		case SensorAdd:
			snapshot, err = client.AddSensor(ctx, sensor)
		case SensorRemove:
			snapshot, err = client.RemoveSensor(ctx, sensor)
		case SensorActivate:
			snapshot, err = client.SetSensorActive(ctx, sensor, true)
		case SensorDeactivate:
			snapshot, err = client.SetSensorActive(ctx, sensor, false)
		default:
			return fmt.Errorf("%w: %s", errUnknownSensorAction, action)
		}

		if err != nil {
			return err
		}

		printSnapshot(opts.Out, snapshot)

		return nil
	})
}

// SubmitImage sends an image file to the server for cat detection.
func SubmitImage(ctx context.Context, opts *Options, path string) error {
	image, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		detected, snapshot, err := client.ProcessImage(ctx, image)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(opts.Out, "cat detected: %t\n", detected)
		printSnapshot(opts.Out, snapshot)

		return nil
	})
}

// Watch prints status events until ctx is canceled.
func Watch(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(client *common.Client) error {
		err := client.Watch(ctx, func(event *pbconv.Event) error {
			switch event.Kind {
			case pbconv.KindAlarmStatus:
				_, _ = fmt.Fprintf(opts.Out, "alarm status: %s\n", event.AlarmStatus)
			case pbconv.KindCatDetected:
				_, _ = fmt.Fprintf(opts.Out, "cat detected: %t\n", event.CatDetected)
			}

			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})
}

// withClient loads the settings, connects and runs fn.
func withClient(ctx context.Context, opts *Options, fn func(*common.Client) error) error {
	ctx = logger.WithName(ctx, "catpoint-ctl")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	serverAddress := settings.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOptions := []common.Option{common.WithCallTimeout(settings.Timeout)}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	} else {
		clientOptions = append(clientOptions, common.WithActor(actor))
	}

	client, err := common.Dial(ctx, serverAddress, clientOptions...)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected", "server_address", serverAddress)

	return fn(client)
}

// loadSettings reads the config file. A missing file is fine when the server
// address is given explicitly.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err == nil {
		return settings, nil
	}

	if opts.ServerAddress == "" || !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &config.Config{
		ServerAddress: opts.ServerAddress,
		Timeout:       config.DefaultTimeout,
	}, nil
}

// printSnapshot renders the state for humans.
func printSnapshot(w io.Writer, snapshot *domain.Snapshot) {
	_, _ = fmt.Fprintf(w, "alarm status:  %s\narming status: %s\n", snapshot.AlarmStatus, snapshot.ArmingStatus)

	if len(snapshot.Sensors) == 0 {
		_, _ = fmt.Fprintln(w, "sensors:       none")
		return
	}

	_, _ = fmt.Fprintln(w, "sensors:")

	for _, sensor := range snapshot.Sensors {
		state := "inactive"
		if sensor.Active {
			state = "active"
		}

		_, _ = fmt.Fprintf(w, "  %-24s %-7s %s\n", sensor.Name, strings.ToLower(sensor.Type.String()), state)
	}
}
