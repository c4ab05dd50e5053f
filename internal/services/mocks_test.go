package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fraudscope/internal/report"
	"fraudscope/pkg/contracts/domain"
)

// MockReportWriter is a mock for the ReportWriter interface
type MockReportWriter struct {
	mock.Mock
}

func (m *MockReportWriter) WriteXLSX(ctx context.Context, profile *report.Profile, table *domain.Table, path string) error {
	args := m.Called(ctx, profile, table, path)
	return args.Error(0)
}

// MockTableLoader is a mock for the TableLoader interface
type MockTableLoader struct {
	mock.Mock
}

func (m *MockTableLoader) Load(ctx context.Context, path string) (*domain.Table, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Table), args.Error(1)
}
