package providers

import (
	"github.com/samber/do/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/cache"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/config"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/logger"
)

// CacheHandle wraps the result cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the comparison result cache. With persistence enabled
// results survive restarts in a badger directory under the data path.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := cache.Options{
		MaxEntries: cfg.Cache.MaxEntries,
		Logger:     log.Logger,
	}
	if cfg.Cache.Persist {
		opts.Path = cfg.CachePath()
	}

	c, err := cache.New(opts)
	if err != nil {
		return nil, err
	}

	log.Info("Result cache initialized",
		"max_entries", cfg.Cache.MaxEntries,
		"persistent", c.Persistent(),
	)

	return &CacheHandle{Cache: c}, nil
}

// ProvideEngine provides the alignment engine configured from settings.
func ProvideEngine(i do.Injector) (*alignment.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return alignment.NewEngine(alignment.Options{
		FallbackSlotSeconds: cfg.Alignment.FallbackSlot.Seconds(),
		MatchThreshold:      cfg.Alignment.MatchThreshold,
	})
}
