package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/shannong20/Evalytics-sub000/api/v1"
	"github.com/shannong20/Evalytics-sub000/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppEnv:       "test",
		DBDriver:     "sqlite3",
		DBPath:       ":memory:",
		CacheEnabled: false,
		CacheTTL:     time.Minute,
		GRPCPort:     freePort(t),
		HTTPAddr:     "127.0.0.1:0",
		MinResponses: 5,
	}
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.GRPCPort = 0

	_, err := NewApp(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewAppBadLexicon(t *testing.T) {
	cfg := testConfig(t)
	cfg.LexiconPath = "/does/not/exist.yaml"

	_, err := NewApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexicon")
}

func TestNewAppReleasesListenersOnFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.HTTPAddr = busy.Addr().String()

	_, err = NewApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), cfg.HTTPAddr)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	require.NoError(t, err, "gRPC port should be released")
	require.NoError(t, lis.Close())
}

func TestAppServesGRPCAndHTTP(t *testing.T) {
	application, err := NewApp(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	application.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, application.Shutdown(ctx))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(application.GRPCAddr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: pb.InstructorAnalytics_ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)

	req, err := structpb.NewStruct(map[string]any{"evaluatee_id": 404})
	require.NoError(t, err)
	_, err = pb.NewInstructorAnalyticsClient(conn).GetInstructorReport(ctx, req)
	assert.Equal(t, codes.NotFound, status.Code(err))

	base := "http://" + application.HTTPAddr().String()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/v1/instructors/404/report")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
