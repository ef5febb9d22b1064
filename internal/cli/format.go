package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// FormatOptions holds flags for the format command.
type FormatOptions struct {
	*RootOptions
	Device string // device connection string (port, serial id)
	Tool   string // device tool executable override

	// Formatter allows substituting the device capability (for testing).
	Formatter DeviceFormatter
}

// NewFormatCommand creates the format command.
func NewFormatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Erase and reformat the device filesystem",
		Long: `Erase and reformat the connected device's filesystem.

The device tool is treated as a black box: the command succeeds or fails as
a whole, with the tool's own diagnostics surfaced on failure.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Device, "device", "", "device to connect to (default: auto-detect)")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "device tool executable (default mpremote)")

	return cmd
}

func runFormat(opts *FormatOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	device := opts.Formatter
	if device == nil {
		device = &ExecDeviceFormatter{Tool: opts.Tool}
	}

	if err := device.Format(cmd.Context(), opts.Device); err != nil {
		_ = formatter.Error(ErrCodeDevice, err.Error(), nil)
		return WrapExitError(ExitFailure, "device format failed", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(map[string]string{"result": "formatted"})
	}
	fmt.Fprintln(formatter.Writer, "✓ device filesystem formatted")
	return nil
}
