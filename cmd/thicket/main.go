// Command thicket runs and inspects thicket canvases.
package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/thicket/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
