package mocks

import (
	"context"
	"errors"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/repository"
)

// MockEvaluationRepository is a mock implementation of the EvaluationRepository
// interface for testing the service layer.
type MockEvaluationRepository struct {
	FetchProfessorProfileFunc func(ctx context.Context, evaluateeID int64) (*analytics.ProfessorProfile, error)
	FetchEvaluationsFunc      func(ctx context.Context, q repository.EvaluationQuery) ([]analytics.EvaluationRecord, error)
	FetchResponsesFunc        func(ctx context.Context, evaluationIDs []int64) ([]analytics.ResponseRecord, error)
}

// FetchProfessorProfile implements the EvaluationRepository interface
func (m *MockEvaluationRepository) FetchProfessorProfile(ctx context.Context, evaluateeID int64) (*analytics.ProfessorProfile, error) {
	if m.FetchProfessorProfileFunc != nil {
		return m.FetchProfessorProfileFunc(ctx, evaluateeID)
	}
	return nil, errors.New("FetchProfessorProfileFunc not implemented")
}

// FetchEvaluations implements the EvaluationRepository interface
func (m *MockEvaluationRepository) FetchEvaluations(ctx context.Context, q repository.EvaluationQuery) ([]analytics.EvaluationRecord, error) {
	if m.FetchEvaluationsFunc != nil {
		return m.FetchEvaluationsFunc(ctx, q)
	}
	return nil, errors.New("FetchEvaluationsFunc not implemented")
}

// FetchResponses implements the EvaluationRepository interface
func (m *MockEvaluationRepository) FetchResponses(ctx context.Context, evaluationIDs []int64) ([]analytics.ResponseRecord, error) {
	if m.FetchResponsesFunc != nil {
		return m.FetchResponsesFunc(ctx, evaluationIDs)
	}
	return nil, errors.New("FetchResponsesFunc not implemented")
}
