//go:build e2e

package e2e

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/shannong20/Evalytics-sub000/api/v1"
	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	handler "github.com/shannong20/Evalytics-sub000/internal/grpc"
	"github.com/shannong20/Evalytics-sub000/internal/repository"
	"github.com/shannong20/Evalytics-sub000/internal/repository/models"
	"github.com/shannong20/Evalytics-sub000/internal/service"
	"github.com/shannong20/Evalytics-sub000/tests/e2e/mocks"
	grpcsrv "github.com/shannong20/Evalytics-sub000/pkg/grpc/server"
)

type seeded struct {
	professor int64
	courseA   int64
	courseB   int64
}

func setupTestDB(t *testing.T) (*sqlx.DB, seeded) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = repository.Migrate(ctx, db.DB)
	require.NoError(t, err)
	caps, err := repository.ProbeCapabilities(ctx, db)
	require.NoError(t, err)

	accounts := repository.NewAccountRepository(db, caps)
	dept := "Chemistry"
	var s seeded
	s.professor, err = accounts.CreateUser(ctx, models.User{FullName: "Mei Tanaka", Email: "mei@example.edu", Role: "faculty", Department: &dept})
	require.NoError(t, err)
	student, err := accounts.CreateUser(ctx, models.User{FullName: "Jo Park", Email: "jo@example.edu", EvaluatorType: "Student"})
	require.NoError(t, err)
	peer, err := accounts.CreateUser(ctx, models.User{FullName: "Omar Said", Email: "omar@example.edu", Role: "faculty"})
	require.NoError(t, err)

	s.courseA, err = accounts.CreateCourse(ctx, "CHEM101", "General Chemistry")
	require.NoError(t, err)
	s.courseB, err = accounts.CreateCourse(ctx, "CHEM240", "Organic Chemistry")
	require.NoError(t, err)

	teaching, err := accounts.CreateCategory(ctx, "Teaching")
	require.NoError(t, err)
	feedback, err := accounts.CreateCategory(ctx, "Feedback")
	require.NoError(t, err)

	w := 2.0
	clarity, err := accounts.CreateQuestion(ctx, models.Question{CategoryID: teaching, Text: "Explains clearly", Weight: &w})
	require.NoError(t, err)
	pace, err := accounts.CreateQuestion(ctx, models.Question{CategoryID: teaching, Text: "Good pace"})
	require.NoError(t, err)
	timely, err := accounts.CreateQuestion(ctx, models.Question{CategoryID: feedback, Text: "Timely feedback", Weight: &w})
	require.NoError(t, err)

	good, rough := "Great and clear lectures", "Feedback was late and confusing"
	evals := []struct {
		e       models.Evaluation
		ratings map[int64]float64
	}{
		{models.Evaluation{EvaluatorID: student, EvaluateeID: s.professor, CourseID: &s.courseA,
			DateSubmitted: time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC), OverallScore: 4, Comments: &good},
			map[int64]float64{clarity: 5, pace: 4, timely: 4}},
		{models.Evaluation{EvaluatorID: student, EvaluateeID: s.professor, CourseID: &s.courseA,
			DateSubmitted: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), OverallScore: 3, Comments: &rough},
			map[int64]float64{clarity: 4, pace: 3, timely: 2}},
		{models.Evaluation{EvaluatorID: peer, EvaluateeID: s.professor, CourseID: &s.courseB,
			DateSubmitted: time.Date(2024, 10, 5, 9, 0, 0, 0, time.UTC), OverallScore: 4.5},
			nil},
		{models.Evaluation{EvaluatorID: student, EvaluateeID: s.professor, CourseID: &s.courseB,
			DateSubmitted: time.Date(2024, 11, 12, 9, 0, 0, 0, time.UTC), OverallScore: 4},
			map[int64]float64{clarity: 5, pace: 5, timely: 5}},
	}
	for _, ev := range evals {
		_, err := accounts.CreateEvaluation(ctx, ev.e, ev.ratings)
		require.NoError(t, err)
	}
	return db, s
}

func startServer(t *testing.T, db *sqlx.DB, cache handler.Cacher) pb.InstructorAnalyticsClient {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	caps, err := repository.ProbeCapabilities(ctx, db)
	require.NoError(t, err)
	svc := service.NewAnalyticsService(repository.NewEvaluationRepository(db, caps), analytics.New(nil), logger)
	handlers := handler.NewGRPCHandlers(svc, cache, logger, 5*time.Minute)

	lis := bufconn.Listen(1 << 20)
	srv, err := grpcsrv.New(grpcsrv.WithListener(lis), grpcsrv.WithRecovery(true), grpcsrv.WithMetrics(true))
	require.NoError(t, err)
	srv.RegisterServiceWithHealth(pb.InstructorAnalytics_ServiceName, func(s *grpc.Server) {
		pb.RegisterInstructorAnalyticsServer(s, handlers)
	})
	srv.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return pb.NewInstructorAnalyticsClient(conn)
}

func request(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestE2E_GetInstructorReport(t *testing.T) {
	db, s := setupTestDB(t)
	client := startServer(t, db, nil)

	resp, err := client.GetInstructorReport(context.Background(), request(t, map[string]any{
		"evaluatee_id":  s.professor,
		"min_responses": 2,
	}))
	require.NoError(t, err)

	report := resp.AsMap()
	out := report["json_output"].(map[string]any)

	professor := out["professor"].(map[string]any)
	assert.Equal(t, "Mei Tanaka", professor["full_name"])
	assert.Equal(t, "Chemistry", professor["department"])

	topline := out["topline"].(map[string]any)
	assert.Equal(t, 4.0, topline["evaluations_count"])
	assert.NotNil(t, topline["overall_average"])

	quality := out["data_quality"].(map[string]any)
	assert.Len(t, quality["evaluations_with_missing_responses"], 1)
	assert.Equal(t, 1.0, quality["fallback_score_count"])

	categories := out["category_breakdown"].([]any)
	require.Len(t, categories, 2)
	assert.Equal(t, "Teaching", categories[0].(map[string]any)["category"])

	trend := out["trend"].([]any)
	require.Len(t, trend, 2)
	assert.Equal(t, "Spring 2024", trend[0].(map[string]any)["label"])
	assert.Equal(t, "Fall 2024", trend[1].(map[string]any)["label"])

	assert.Contains(t, report["human_summary"], "Mei Tanaka received 4 evaluations")
	assert.Contains(t, report, "chart_datasets")
}

func TestE2E_Filters(t *testing.T) {
	db, s := setupTestDB(t)
	client := startServer(t, db, nil)
	ctx := context.Background()

	count := func(t *testing.T, m map[string]any) float64 {
		t.Helper()
		m["evaluatee_id"] = s.professor
		resp, err := client.GetInstructorReport(ctx, request(t, m))
		require.NoError(t, err)
		return resp.AsMap()["json_output"].(map[string]any)["topline"].(map[string]any)["evaluations_count"].(float64)
	}

	assert.Equal(t, 2.0, count(t, map[string]any{"start_date": "2024-01-01", "end_date": "2024-03-01"}))
	assert.Equal(t, 2.0, count(t, map[string]any{"course_ids": []any{s.courseB}}))
	assert.Equal(t, 1.0, count(t, map[string]any{"evaluator_type": "faculty"}))
	assert.Equal(t, 3.0, count(t, map[string]any{"evaluator_type": "student"}))
	assert.Equal(t, 0.0, count(t, map[string]any{"start_date": "2030-01-01"}))
}

func TestE2E_ErrorScenarios(t *testing.T) {
	db, s := setupTestDB(t)
	client := startServer(t, db, nil)
	ctx := context.Background()

	t.Run("unknown instructor", func(t *testing.T) {
		_, err := client.GetInstructorReport(ctx, request(t, map[string]any{"evaluatee_id": 9999}))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("invalid date range", func(t *testing.T) {
		_, err := client.GetInstructorReport(ctx, request(t, map[string]any{
			"evaluatee_id": s.professor,
			"start_date":   "2024-06-01",
			"end_date":     "2024-01-01",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "date_range")
	})

	t.Run("malformed fields are all reported", func(t *testing.T) {
		_, err := client.GetInstructorReport(ctx, request(t, map[string]any{
			"evaluatee_id":   s.professor,
			"start_date":     "June 1st",
			"evaluator_type": "alumni",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		msg := status.Convert(err).Message()
		assert.Contains(t, msg, "start_date")
		assert.Contains(t, msg, "evaluator_type")
	})
}

func TestE2E_CachingBehavior(t *testing.T) {
	db, s := setupTestDB(t)
	cache := mocks.NewTrackingCache()
	client := startServer(t, db, cache)
	ctx := context.Background()
	req := request(t, map[string]any{"evaluatee_id": s.professor})

	first, err := client.GetInstructorReport(ctx, req)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, sets, _ := cache.Stats()
		return sets >= 1
	}, 2*time.Second, 10*time.Millisecond, "miss should populate the cache")

	second, err := client.GetInstructorReport(ctx, req)
	require.NoError(t, err)

	_, _, hits := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, first.AsMap()["human_summary"], second.AsMap()["human_summary"])
	assert.Equal(t, first.AsMap()["json_output"], second.AsMap()["json_output"])
}
