package mocks

import (
	"context"
	"errors"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockAnalyticsService struct {
	InstructorReportFunc func(ctx context.Context, f analytics.Filter) (*analytics.Report, error)
}

// InstructorReport implements the AnalyticsService interface
func (m *MockAnalyticsService) InstructorReport(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
	if m.InstructorReportFunc != nil {
		return m.InstructorReportFunc(ctx, f)
	}
	return nil, errors.New("InstructorReportFunc not implemented")
}
