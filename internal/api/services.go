package api

import "github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"

// Services groups all business logic services used by the API server.
type Services struct {
	Listing    *service.ListingService
	Evaluation *service.EvaluationService
	Comparison *service.ComparisonService
	Search     *service.SearchService
}
