// Package di provides dependency injection configuration for the evals server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/config"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/di/providers"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/logger"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCache)

	// Engine
	do.Provide(injector, providers.ProvideEngine)

	// Business services
	do.Provide(injector, providers.ProvideListingService)
	do.Provide(injector, providers.ProvideEvaluationService)
	do.Provide(injector, providers.ProvideComparisonService)
	do.Provide(injector, providers.ProvideSearchService)

	// Workers
	do.Provide(injector, providers.ProvideImportWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the server and workers.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*alignment.Engine](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.ListingService](injector)
	_ = do.MustInvoke[*service.EvaluationService](injector)
	_ = do.MustInvoke[*service.ComparisonService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Workers
	if _, err := do.Invoke[*providers.ImportWatcherHandle](injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
