package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/shannong20/Evalytics-sub000/api/v1"
	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyInstructorReport CacheKeyType = "grpc:instructor_report"
)

type GRPCHandlers struct {
	pb.UnimplementedInstructorAnalyticsServer
	analytics AnalyticsService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration

	minResponses int
}

type HandlerOption func(*GRPCHandlers)

// WithDefaultMinResponses sets the low-sample threshold used when a request
// does not carry min_responses.
func WithDefaultMinResponses(n int) HandlerOption {
	return func(h *GRPCHandlers) {
		if n > 0 {
			h.minResponses = n
		}
	}
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(svc AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration, opts ...HandlerOption) *GRPCHandlers {
	if svc == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	h := &GRPCHandlers{
		analytics:    svc,
		cache:        cache,
		logger:       logger.Named("grpc-handler"),
		cacheTTL:     ttl,
		minResponses: analytics.DefaultMinResponses,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// parseRequest reads the loosely typed request struct into a validated filter.
func (s *GRPCHandlers) parseRequest(req *structpb.Struct) (analytics.Filter, error) {
	fields := req.GetFields()

	evaluateeID, ok := int64Value(fields["evaluatee_id"])
	if !ok && fields["evaluatee_id"] != nil {
		return analytics.Filter{}, status.Error(codes.InvalidArgument, "invalid filter: evaluatee_id")
	}

	raw := analytics.RawFilter{
		StartDate:     stringValue(fields["start_date"]),
		EndDate:       stringValue(fields["end_date"]),
		EvaluatorType: stringValue(fields["evaluator_type"]),
		MinResponses:  stringValue(fields["min_responses"]),
	}
	if list := fields["course_ids"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			raw.CourseIDs = append(raw.CourseIDs, stringValue(v))
		}
	}
	if raw.MinResponses == "" {
		raw.MinResponses = strconv.Itoa(s.minResponses)
	}

	f, err := analytics.ParseFilter(evaluateeID, raw)
	if err != nil {
		return analytics.Filter{}, invalidArgument(err)
	}
	return f, nil
}

func normalizeKey(prefix CacheKeyType, f analytics.Filter) string {
	day := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	}

	courses := append([]int64(nil), f.CourseIDs...)
	sort.Slice(courses, func(i, j int) bool { return courses[i] < courses[j] })
	parts := make([]string, len(courses))
	for i, c := range courses {
		parts[i] = strconv.FormatInt(c, 10)
	}

	return fmt.Sprintf("%s:%d:%s:%s:%s:%s:%d",
		prefix, f.EvaluateeID, day(f.StartDate), day(f.EndDate),
		strings.Join(parts, ","), strings.ToLower(string(f.EvaluatorType)), f.MinResponses)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	var ife *analytics.InvalidFilterError
	switch {
	case errors.As(err, &ife):
		s.logger.Info("invalid filter", zap.String("op", op), zap.Strings("fields", ife.Fields))
		return invalidArgument(err)
	case errors.Is(err, analytics.ErrNotFound):
		s.logger.Info("evaluatee not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GetInstructorReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	fetch := func(fetchCtx context.Context) (*analytics.Report, error) {
		return s.analytics.InstructorReport(fetchCtx, f)
	}

	var report *analytics.Report
	if s.cache != nil {
		report, err = FindAndCache(ctx, s.cache, &s.sfGroup, normalizeKey(cacheKeyInstructorReport, f), s.cacheTTL, s.logger, fetch)
	} else {
		report, err = fetch(ctx)
	}
	if err != nil {
		return nil, s.handleError(ctx, "GetInstructorReport", err)
	}

	out, err := reportToStruct(report)
	if err != nil {
		return nil, s.handleError(ctx, "GetInstructorReport", err)
	}
	return out, nil
}

func reportToStruct(report *analytics.Report) (*structpb.Struct, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert report: %w", err)
	}
	return out, nil
}

func invalidArgument(err error) error {
	var ife *analytics.InvalidFilterError
	if errors.As(err, &ife) {
		return status.Errorf(codes.InvalidArgument, "invalid filter: %s", strings.Join(ife.Fields, ", "))
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

// stringValue renders scalars the way they would appear in a query string.
func stringValue(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}

func int64Value(v *structpb.Value) (int64, bool) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		return n, err == nil
	}
	return 0, false
}
