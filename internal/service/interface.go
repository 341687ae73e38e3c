package service

import (
	"context"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/repository"
)

// EvaluationRepository defines the read operations the analytics service needs.
type EvaluationRepository interface {
	FetchProfessorProfile(ctx context.Context, evaluateeID int64) (*analytics.ProfessorProfile, error)
	FetchEvaluations(ctx context.Context, q repository.EvaluationQuery) ([]analytics.EvaluationRecord, error)
	FetchResponses(ctx context.Context, evaluationIDs []int64) ([]analytics.ResponseRecord, error)
}
