package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
)

type serviceFunc func(ctx context.Context, f analytics.Filter) (*analytics.Report, error)

func (fn serviceFunc) InstructorReport(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
	return fn(ctx, f)
}

func newTestServer(t *testing.T, fn serviceFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(fn, zaptest.NewLogger(t)).Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestNewHandlerPanicsOnNilService(t *testing.T) {
	assert.Panics(t, func() { NewHandler(nil, nil) })
}

func TestInstructorReport(t *testing.T) {
	avg := 4.25
	var got analytics.Filter
	srv := newTestServer(t, func(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
		got = f
		return &analytics.Report{
			HumanSummary: "Ada Reyes received 2 evaluations",
			JSONOutput: analytics.Output{
				Topline: analytics.Topline{EvaluationsCount: 2, OverallAverage: &avg},
			},
		}, nil
	})

	resp, body := get(t, srv.URL+"/api/v1/instructors/42/report?start_date=2024-01-01&course_ids=3,4&course_ids=7&evaluator_type=student&min_responses=2")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Ada Reyes received 2 evaluations", body["human_summary"])

	out := body["json_output"].(map[string]any)
	topline := out["topline"].(map[string]any)
	assert.Equal(t, 4.25, topline["overall_average"])

	assert.Equal(t, int64(42), got.EvaluateeID)
	assert.Equal(t, []int64{3, 4, 7}, got.CourseIDs)
	assert.Equal(t, analytics.EvaluatorStudent, got.EvaluatorType)
	assert.Equal(t, 2, got.MinResponses)
	require.NotNil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
}

func TestInstructorReportDefaultMinResponses(t *testing.T) {
	var got analytics.Filter
	fn := serviceFunc(func(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
		got = f
		return &analytics.Report{}, nil
	})
	srv := httptest.NewServer(NewHandler(fn, nil, WithDefaultMinResponses(9)).Router())
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/api/v1/instructors/5/report")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 9, got.MinResponses)

	_, _ = get(t, srv.URL+"/api/v1/instructors/5/report?min_responses=2")
	assert.Equal(t, 2, got.MinResponses)
}

func TestInstructorReportErrors(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		err    error
		status int
		fields []any
	}{
		{
			name:   "malformed filter",
			path:   "/api/v1/instructors/42/report?start_date=yesterday&min_responses=x",
			status: http.StatusBadRequest,
			fields: []any{"start_date", "min_responses"},
		},
		{
			name:   "non numeric id",
			path:   "/api/v1/instructors/abc/report",
			status: http.StatusBadRequest,
			fields: []any{"evaluatee_id"},
		},
		{
			name:   "unknown instructor",
			path:   "/api/v1/instructors/7/report",
			err:    &analytics.NotFoundError{EvaluateeID: 7},
			status: http.StatusNotFound,
		},
		{
			name:   "storage failure",
			path:   "/api/v1/instructors/7/report",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, func(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
				return nil, tc.err
			})

			resp, body := get(t, srv.URL+tc.path)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
			if tc.fields != nil {
				assert.ElementsMatch(t, tc.fields, body["fields"])
			}
			assert.NotContains(t, body["error"], "disk on fire")
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
		return nil, errors.New("unused")
	})

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	mresp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	assert.Equal(t, http.StatusOK, mresp.StatusCode)

	metrics, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `http_requests_total{method="GET",path="/healthz",status_code="200"}`)
}

func TestRawFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?course_ids=1,%202,&course_ids=3&end_date=2024-05-01", nil)
	raw := rawFilter(r)

	assert.Equal(t, []string{"1", "2", "3"}, raw.CourseIDs)
	assert.Equal(t, "2024-05-01", raw.EndDate)
	assert.Empty(t, raw.StartDate)
}
