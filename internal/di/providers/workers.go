package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/config"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/importer"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/logger"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/watcher"
)

// ImportWatcherHandle wraps the import directory watcher with its context for
// lifecycle management. Watcher is nil when no import path is configured.
type ImportWatcherHandle struct {
	Watcher  *watcher.Watcher
	Importer *importer.Importer
	cancel   context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImportWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideImportWatcher watches the import directory and feeds settled JSON
// files to the importer.
func ProvideImportWatcher(i do.Injector) (*ImportWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	listingService := do.MustInvoke[*service.ListingService](i)
	evaluationService := do.MustInvoke[*service.EvaluationService](i)

	imp := importer.New(listingService, evaluationService, log.Logger)

	if cfg.Import.Path == "" {
		log.Info("Import watcher disabled, no import path configured")
		return &ImportWatcherHandle{Importer: imp}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{
		Extensions: []string{".json"},
	})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(cfg.Import.Path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Import watcher stopped", "error", err)
		}
	}()
	go imp.Run(ctx, w.Events())
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-w.Errors():
				log.Warn("Import watcher error", "error", err)
			}
		}
	}()

	log.Info("Import watcher started", "path", cfg.Import.Path)

	return &ImportWatcherHandle{
		Watcher:  w,
		Importer: imp,
		cancel:   cancel,
	}, nil
}
