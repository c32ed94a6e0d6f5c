package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phanxgames/thicket"
	"github.com/phanxgames/thicket/scene"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window with the demo board",
		Long: `Open an Ebitengine window and mount the demo board on a thicket canvas.

Clicking a tile flips its colour, glides the marker onto it and pans the
camera to centre it. Camera bounds and follow come from the config. When
--config names a file, edits to it are applied to the running canvas.

Example:
  thicket run
  thicket run --config canvas.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanvas(cmd, rootOpts)
		},
	}
	return cmd
}

func runCanvas(cmd *cobra.Command, rootOpts *RootOptions) error {
	opts, err := rootOpts.loadOptions()
	if err != nil {
		return err
	}
	logger := rootOpts.logger(cmd.ErrOrStderr(), opts)

	s := scene.NewScene()
	backend := scene.NewBackend(s)
	cat := thicket.NewCatalogue()
	scene.RegisterKinds(cat)
	engine := thicket.NewEngine(thicket.WithLogger(logger), thicket.WithDebug(opts.Debug))

	canvas, err := thicket.NewCanvas(thicket.CanvasConfig{
		Engine:    engine,
		Catalogue: cat,
		Backend:   backend,
		Options:   opts,
		Events: func(st *thicket.Store) thicket.EventManager {
			return scene.NewPointerEvents(engine, st, s)
		},
		SceneGraph: func(scope *thicket.Scope) (thicket.Component, error) {
			board, err := buildDemo(thicket.RendererFrom(scope), s.Root(), s.PrimaryCamera())
			if err != nil {
				return nil, err
			}
			return board, nil
		},
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	game := scene.NewGame(canvas, backend)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		game.Post(game.Stop)
	}()
	if rootOpts.Config != "" {
		go watchConfig(ctx, rootOpts.Config, game, canvas, logger)
	}

	logger.Info("canvas starting", "title", opts.Title, "frameloop", opts.Frameloop)
	if err := scene.RunGame(game); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	logger.Info("canvas stopped")
	return nil
}
