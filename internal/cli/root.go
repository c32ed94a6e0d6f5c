// Package cli implements the thicket command line.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phanxgames/thicket"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Verbose bool
}

// NewRootCommand creates the root command for the thicket CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "thicket",
		Short: "Retained-mode scene graph runner",
		Long:  "Run and inspect thicket canvases backed by an Ebitengine window.",
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "canvas options file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))

	return cmd
}

// loadOptions returns the options named by --config, or the defaults.
func (o *RootOptions) loadOptions() (thicket.Options, error) {
	if o.Config == "" {
		return thicket.DefaultOptions(), nil
	}
	return thicket.LoadOptions(o.Config)
}

// logger builds a text logger at the options' level, lowered to debug by
// --verbose.
func (o *RootOptions) logger(w io.Writer, opts thicket.Options) *slog.Logger {
	level := opts.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
