package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startHealthServer(t *testing.T) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("ledger", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis
}

func dialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func TestGetConnectionReusesConnection(t *testing.T) {
	lis := startHealthServer(t)
	pool := NewPool()
	defer pool.Close()

	first, err := pool.GetConnection("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	second, err := pool.GetConnection("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetConnectionReplacesClosedConnection(t *testing.T) {
	lis := startHealthServer(t)
	pool := NewPool()
	defer pool.Close()

	first, err := pool.GetConnection("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := pool.GetConnection("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestLoggingInterceptor(t *testing.T) {
	lis := startHealthServer(t)
	core, logs := observer.New(zap.DebugLevel)
	pool := NewPool(WithLogger(zap.New(core)))
	defer pool.Close()

	conn, err := pool.GetConnection("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	client := healthpb.NewHealthClient(conn)

	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "ledger"})
	require.NoError(t, err)

	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})
	require.Equal(t, codes.NotFound, status.Code(err))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "rpc", entries[0].Message)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "rpc failed", entries[1].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "/grpc.health.v1.Health/Check", entries[1].ContextMap()["method"])
}

func TestCloseEmptiesPool(t *testing.T) {
	lis := startHealthServer(t)
	pool := NewPool()

	conn, err := pool.GetConnection("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	_, ok := pool.conns.Load("passthrough:///bufnet")
	assert.False(t, ok)
	assert.NoError(t, pool.Close())
	_ = conn
}
