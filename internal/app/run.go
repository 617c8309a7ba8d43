package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/hotpanel/internal/ctxlog"
	"github.com/vk/hotpanel/internal/feed"
	"github.com/vk/hotpanel/internal/fsutil"
	"github.com/vk/hotpanel/internal/gateway"
	"github.com/vk/hotpanel/internal/model"
)

// Run executes the sandbox until ctx is cancelled: it preloads persisted
// panels, connects the authoring feed when configured, starts the mount loop,
// and serves the gateway.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	gw := gateway.New(ctx, a.logger, a.registry, a.reporter, a.boundary)

	// Snapshots arrive synchronously under the registry lock; the subscriber
	// only coalesces them onto a channel the mount loop drains. Coalescing is
	// safe because subscribers are serialized by that same lock.
	snapshots := make(chan []model.Entry, 1)
	unsubscribe := a.registry.Subscribe(func(entries []model.Entry) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- entries
	})
	defer unsubscribe()

	go a.mountLoop(ctx, snapshots, gw)

	if a.config.PanelsPath != "" {
		if err := a.preloadPanels(ctx); err != nil {
			return fmt.Errorf("failed to preload panels: %w", err)
		}
	}

	if a.config.FeedURL != "" {
		f, err := feed.Connect(ctx, feed.Config{
			URL:       a.config.FeedURL,
			Namespace: a.config.FeedNamespace,
		}, a.registry)
		if err != nil {
			return fmt.Errorf("failed to connect authoring feed: %w", err)
		}
		defer f.Close()
	}

	a.logger.Info("🚀 Sandbox running.", "listen", a.config.ListenAddr)
	return gw.Run(ctx, a.config.ListenAddr)
}

// mountLoop turns registry snapshots into mounted views and pushes the
// refreshed state to gateway clients. It runs outside the registry lock so
// that mounting may itself report render failures back into the registry.
func (a *App) mountLoop(ctx context.Context, snapshots <-chan []model.Entry, gw *gateway.Server) {
	for {
		select {
		case <-ctx.Done():
			return
		case entries := <-snapshots:
			a.boundary.MountAll(entries)
			gw.Broadcast()
		}
	}
}

// preloadPanels registers every persisted .hcl panel source found under the
// configured panels path. The file's base name (without extension) becomes
// the panel id.
func (a *App) preloadPanels(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Preloading panels...", "panels_path", a.config.PanelsPath)

	files, err := fsutil.FindFilesByExtension(a.config.PanelsPath, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to find panel files in %s: %w", a.config.PanelsPath, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl panel files found in path.", "path", a.config.PanelsPath)
		return nil
	}

	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read panel file %s: %w", file, err)
		}
		id := strings.TrimSuffix(filepath.Base(file), ".hcl")
		a.registry.RegisterFromUpdate(ctx, model.PanelUpdate{
			ID:     id,
			Path:   file,
			Source: string(source),
		})
	}

	logger.Info("Panels preloaded.", "panels_found", len(files))
	return nil
}
