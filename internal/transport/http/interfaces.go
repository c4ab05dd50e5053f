package http

import (
	"context"

	"fraudscope/internal/dataprocessing"
	"fraudscope/internal/report"
	"fraudscope/internal/services"
	apiv1 "fraudscope/pkg/contracts/api/v1"
	"fraudscope/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations the API exposes
type DatasetServiceInterface interface {
	Summary() services.DatasetStatus
	Current() *domain.Table
	Raw() *domain.Table
	ProfileSummary(ctx context.Context) (*report.Profile, error)
	Aggregate(ctx context.Context, opts dataprocessing.AggregateOptions, raw bool) ([]domain.GroupRate, error)
}

// HealthServiceInterface defines the health check operation
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) apiv1.HealthResponse
}
