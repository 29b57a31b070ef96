package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/service/client"
)

//nolint:gochecknoglobals // Cobra commands.
var (
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the alarm status, arming status and sensors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithOptions(cmd, client.ShowStatus)
		},
	}

	armCmd = &cobra.Command{
		Use:       "arm disarmed|armed_home|armed_away",
		Short:     "Change the arming status.",
		Long:      "Change the arming status. Arming always raises the alarm; arming at home also resets every sensor.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"disarmed", "armed_home", "armed_away"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd, func(ctx context.Context, opts *client.Options) error {
				return client.SetArmingStatus(ctx, opts, args[0])
			})
		},
	}

	sensorCmd = &cobra.Command{
		Use:   "sensor",
		Short: "Manage sensors.",
	}

	imageCmd = &cobra.Command{
		Use:   "image <file>",
		Short: "Submit a camera image for cat detection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd, func(ctx context.Context, opts *client.Options) error {
				return client.SubmitImage(ctx, opts, args[0])
			})
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print status events until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithOptions(cmd, client.Watch)
		},
	}
)

// newSensorCmd builds a sensor subcommand for the action.
func newSensorCmd(action client.SensorAction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <name> <door|window|motion>",
		Short: short,
		Args:  cobra.ExactArgs(2), //nolint:mnd // Name and type.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd, func(ctx context.Context, opts *client.Options) error {
				return client.ChangeSensor(ctx, opts, action, args[0], args[1])
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	sensorCmd.AddCommand(
		newSensorCmd(client.SensorAdd, "Register a new inactive sensor."),
		newSensorCmd(client.SensorRemove, "Remove a sensor."),
		newSensorCmd(client.SensorActivate, "Mark a sensor as tripped."),
		newSensorCmd(client.SensorDeactivate, "Mark a sensor as idle."),
	)
}
