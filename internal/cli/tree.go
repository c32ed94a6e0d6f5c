package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/thicket"
	"github.com/phanxgames/thicket/scene"
)

const (
	settleStep       = 50 * time.Millisecond
	settleFrameLimit = 600
)

// TreeOptions holds flags for the tree command.
type TreeOptions struct {
	*RootOptions
	Clicks []string
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TreeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the demo board's scene graph",
		Long: `Build the demo board without opening a window and print its node tree.

Each --click names a node to click before printing. Animations started by
the clicks are run to completion first, so the printed tree shows where
the board settles.

Example:
  thicket tree
  thicket tree --click tile-0-1 --click tile-1-2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTree(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Clicks, "click", nil, "node to click before printing (repeatable)")

	return cmd
}

func printTree(cmd *cobra.Command, opts *TreeOptions) error {
	options, err := opts.loadOptions()
	if err != nil {
		return err
	}
	engine := thicket.NewEngine(thicket.WithLogger(opts.logger(cmd.ErrOrStderr(), options)))
	store := thicket.NewStore()
	s := scene.NewScene()
	engine.Prepare(s.Root(), &thicket.Overrides{Store: store})
	cat := thicket.NewCatalogue()
	scene.RegisterKinds(cat)
	r := thicket.NewRenderer(engine, store, cat)

	board, err := buildDemo(r, s.Root(), nil)
	if err != nil {
		return err
	}
	defer board.Destroy()

	for _, name := range opts.Clicks {
		node := s.Root().FindDescendant(name)
		if node == nil {
			return fmt.Errorf("click %q: no such node", name)
		}
		if !engine.Dispatch(node, thicket.EventClick, &thicket.PointerEvent{Object: node}) {
			return fmt.Errorf("click %q: node has no click handler", name)
		}
	}
	settle(store)
	r.Flush()
	s.UpdateTransforms()

	return scene.Dump(cmd.OutOrStdout(), s.Root())
}

// settle ticks store in demand mode on a synthetic clock until no frames
// are pending.
func settle(store *thicket.Store) {
	store.SetFrameloop(thicket.FrameloopDemand)
	store.SetActive(true)
	now := time.Unix(0, 0)
	for i := 0; i < settleFrameLimit && store.Tick(now); i++ {
		now = now.Add(settleStep)
	}
}
