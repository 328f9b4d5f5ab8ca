package providers

import (
	"github.com/samber/do/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/logger"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
)

// ProvideListingService provides the listing service.
func ProvideListingService(i do.Injector) (*service.ListingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewListingService(storeHandle.Store, log.Logger), nil
}

// ProvideEvaluationService provides the evaluation service.
func ProvideEvaluationService(i do.Injector) (*service.EvaluationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEvaluationService(storeHandle.Store, log.Logger), nil
}

// ProvideComparisonService provides the alignment and timeline service.
func ProvideComparisonService(i do.Injector) (*service.ComparisonService, error) {
	engine := do.MustInvoke[*alignment.Engine](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewComparisonService(engine, cacheHandle.Cache, storeHandle.Store, log.Logger), nil
}
