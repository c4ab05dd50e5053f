package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	apiv1 "fraudscope/pkg/contracts/api/v1"
)

// Health status values
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// DatasetState is the part of DatasetService the health check needs
type DatasetState interface {
	Summary() DatasetStatus
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   DatasetState
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a new health service
func NewHealthService(version string, dataset DatasetState, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status. The service is degraded while
// no dataset is loaded.
func (hs *HealthService) HealthCheck(ctx context.Context) apiv1.HealthResponse {
	resp := apiv1.HealthResponse{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Runtime: &apiv1.RuntimeInfo{
			GoVersion:  runtime.Version(),
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Goroutines: runtime.NumGoroutine(),
		},
	}

	if hs.dataset != nil {
		st := hs.dataset.Summary()
		resp.DatasetLoaded = st.Loaded
		resp.Transformed = st.Transformed
		switch {
		case st.Clean != nil:
			resp.Rows = st.Clean.Rows
		case st.Raw != nil:
			resp.Rows = st.Raw.Rows
		}
	}
	if !resp.DatasetLoaded {
		resp.Status = StatusDegraded
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", resp.Status),
		slog.Bool("dataset_loaded", resp.DatasetLoaded))
	return resp
}
