package cli

import (
	"context"
	"log/slog"

	"github.com/phanxgames/thicket"
	"github.com/phanxgames/thicket/scene"
)

// watchConfig applies every successful reload of path to canvas on the
// game loop. Invalid reloads are logged and leave the canvas unchanged.
func watchConfig(ctx context.Context, path string, game *scene.Game, canvas *thicket.Canvas, logger *slog.Logger) {
	err := thicket.WatchOptions(ctx, path, func(opts thicket.Options, err error) {
		if err != nil {
			logger.Warn("config reload rejected", "path", path, "err", err)
			return
		}
		game.Post(func() {
			if err := canvas.SetOptions(opts); err != nil {
				logger.Warn("config reload failed", "path", path, "err", err)
				return
			}
			logger.Info("config reloaded", "path", path)
		})
	})
	if err != nil {
		logger.Error("config watch stopped", "path", path, "err", err)
	}
}
