package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/phanxgames/thicket"
)

// ConfigFormats defines the allowed output formats.
var ConfigFormats = []string{"yaml", "toml"}

// ConfigOptions holds flags for the config command.
type ConfigOptions struct {
	*RootOptions
	Format string
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective canvas options",
		Long: `Print the canvas options after defaults are applied and the result is
validated. Without --config the defaults are printed, which makes a
starting point for a new options file.

Example:
  thicket config > canvas.yaml
  thicket config --config canvas.yaml --format toml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "yaml", "output format (yaml|toml)")

	return cmd
}

func printConfig(cmd *cobra.Command, opts *ConfigOptions) error {
	if !slices.Contains(ConfigFormats, opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ConfigFormats)
	}
	options, err := opts.loadOptions()
	if err != nil {
		return err
	}
	data, err := thicket.MarshalOptions(options, opts.Format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
