package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/repository"
)

const (
	dbTimeout = 2 * time.Second
)

var ErrStorageFailure = errors.New("storage failure")

var tracer = otel.Tracer("evalytics.service")

// AnalyticsService fetches evaluation snapshots and runs the analytics engine.
type AnalyticsService struct {
	storage EvaluationRepository
	engine  *analytics.Engine
	logger  *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService instance. A nil engine
// selects one with the built-in lexicon.
func NewAnalyticsService(storage EvaluationRepository, engine *analytics.Engine, logger *zap.Logger) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if engine == nil {
		engine = analytics.New(nil)
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		storage: storage,
		engine:  engine,
		logger:  logger,
	}
}

// InstructorReport builds the analytics report for f.EvaluateeID.
func (s *AnalyticsService) InstructorReport(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "AnalyticsService.InstructorReport")
	defer span.End()
	span.SetAttributes(attribute.Int64("evaluatee_id", f.EvaluateeID))

	report, err := s.instructorReport(ctx, f)
	reportDuration.Observe(time.Since(start).Seconds())
	reportTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	n := report.JSONOutput.Topline.EvaluationsCount
	reportEvaluations.Observe(float64(n))
	span.SetAttributes(attribute.Int("evaluations_count", n))

	s.logger.Info("computed instructor report",
		zap.Int64("evaluatee_id", f.EvaluateeID),
		zap.Int("evaluations", n),
		zap.Int("duplicates", len(report.JSONOutput.DataQuality.DuplicateEvaluationIDs)),
		zap.Int("fallback_scores", report.JSONOutput.DataQuality.FallbackScoreCount),
		zap.Duration("elapsed", time.Since(start)))

	return report, nil
}

func (s *AnalyticsService) instructorReport(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
	if f.EvaluateeID <= 0 {
		return nil, &analytics.InvalidFilterError{Fields: []string{"evaluatee_id"}}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		profile *analytics.ProfessorProfile
		evals   []analytics.EvaluationRecord
	)
	g, gctx := errgroup.WithContext(dbCtx)
	g.Go(func() error {
		p, err := s.storage.FetchProfessorProfile(gctx, f.EvaluateeID)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		rs, err := s.storage.FetchEvaluations(gctx, repository.EvaluationQuery{
			EvaluateeID:   f.EvaluateeID,
			StartDate:     f.StartDate,
			EndDate:       f.EndDate,
			CourseIDs:     f.CourseIDs,
			EvaluatorType: f.EvaluatorType,
		})
		if err != nil {
			return fmt.Errorf("fetch evaluations: %w", err)
		}
		evals = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch evaluation snapshot",
			zap.Int64("evaluatee_id", f.EvaluateeID), zap.Error(err))
		return nil, storageError(err)
	}
	if profile == nil {
		return nil, &analytics.NotFoundError{EvaluateeID: f.EvaluateeID}
	}

	responses, err := s.storage.FetchResponses(dbCtx, evaluationIDs(evals))
	if err != nil {
		s.logger.Error("failed to fetch responses",
			zap.Int64("evaluatee_id", f.EvaluateeID), zap.Error(err))
		return nil, storageError(fmt.Errorf("fetch responses: %w", err))
	}

	return s.engine.Analyze(analytics.Snapshot{
		Profile:     profile,
		Evaluations: evals,
		Responses:   responses,
	}, f)
}

// storageError tags err as a storage failure while keeping context errors
// matchable with errors.Is.
func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// evaluationIDs returns the distinct ids in first-seen order.
func evaluationIDs(evals []analytics.EvaluationRecord) []int64 {
	seen := make(map[int64]struct{}, len(evals))
	ids := make([]int64, 0, len(evals))
	for _, e := range evals {
		if _, ok := seen[e.EvaluationID]; ok {
			continue
		}
		seen[e.EvaluationID] = struct{}{}
		ids = append(ids, e.EvaluationID)
	}
	return ids
}

func outcome(err error) string {
	var ife *analytics.InvalidFilterError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, analytics.ErrNotFound):
		return "not_found"
	case errors.As(err, &ife):
		return "invalid_filter"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
