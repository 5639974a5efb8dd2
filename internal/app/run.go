package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/bootgraph/internal/compiler"
	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/descriptor"
	"github.com/vk/bootgraph/internal/emit"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/runtime"
	"github.com/vk/bootgraph/internal/val"
)

// Run loads the manifests, compiles them and writes the listing. With
// Replay set it then validates the image against the registry and
// initializes it into a fresh scope.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	model, err := a.loader.Load(ctx, a.config.ManifestPaths...)
	if err != nil {
		return fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Debug("Manifests loaded and translated into unified model.")

	img, c, err := compiler.Compile(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to compile manifests: %w", err)
	}
	a.image = img
	logger.Info("Manifests compiled.", "pools", len(img.Pools), "max_cohort", img.MaxCohort)

	if err := a.writeListing(c.Pools(), c.Standalones()); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}

	if a.config.Replay {
		if err := a.replay(ctx, img); err != nil {
			return err
		}
	}

	logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) writeListing(pools []*descriptor.Pool, globals []*descriptor.Standalone) error {
	if a.config.OutPath == "" {
		return emit.WriteListing(a.outW, pools, globals...)
	}
	return os.WriteFile(a.config.OutPath, emit.Listing(pools, globals...), 0o644)
}

func (a *App) replay(ctx context.Context, img *plan.Image) error {
	ctx = ctxlog.With(ctx, "stage", "replay")
	logger := ctxlog.FromContext(ctx)

	if err := a.registry.ValidateImage(ctx, img); err != nil {
		return err
	}
	logger.Debug("Registry validation passed.")

	a.scope = val.NewScope()
	eng, err := runtime.New(img, a.registry, a.scope)
	if err != nil {
		return fmt.Errorf("failed to prepare replay: %w", err)
	}
	a.engine = eng
	if err := eng.InitializeAll(ctx); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	logger.Info("Replay finished.", "globals", len(a.scope.Names()))
	return nil
}
