package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/in/grpc"
	file_adapter "github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/out/file"
	kafka_adapter "github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/out/kafka"
	memory_adapter "github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/out/memory"
	metrics_adapter "github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/out/metrics"
	mysql_adapter "github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-branch-ledger/internal/config"
	"github.com/JoeShih716/go-branch-ledger/pkg/logger"
	"github.com/JoeShih716/go-branch-ledger/pkg/mysql"
	"github.com/JoeShih716/go-branch-ledger/pkg/wal"
	pb "github.com/JoeShih716/go-branch-ledger/proto"
)

var configPath = flag.String("config", config.DefaultPath, "path to the YAML config file")

func main() {
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化 Logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// 3. 稽核輸出 (Driven Adapters)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sink, closeSinks, err := buildAuditSink(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer closeSinks()

	// 4. 初始化 Domain 與 UseCase
	ceiling, err := cfg.Ledger.Ceiling()
	if err != nil {
		return err
	}
	recorder := audit.NewRecorder(sink, audit.WithLogger(log), audit.WithBaseContext(ctx))
	registry := domain.NewRegistry(
		domain.WithBranch(cfg.Ledger.Branch),
		domain.WithDefaultCeiling(ceiling),
		domain.WithDecorator(audit.Decorator(recorder)),
	)
	coreUseCase := usecase.NewCoreUseCase(registry, recorder, usecase.WithLogger(log))

	// 5. 初始化 gRPC Adapter (Driving Adapter)
	grpcServer := grpc_adapter.NewGrpcServer(coreUseCase)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpc_adapter.LoggingInterceptor(log),
		grpc_adapter.RecoveryInterceptor(log),
	))
	pb.RegisterLedgerServiceServer(s, grpcServer)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	reflection.Register(s)

	// 6. Metrics
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", zap.String("addr", cfg.GRPCAddr))
		if err := s.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		log.Info("starting metrics server", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.Stringer("signal", sig))
	case runErr = <-errCh:
		log.Error("server failed", zap.Error(runErr))
	}

	healthServer.Shutdown()
	s.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics server shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return runErr
}

// buildAuditSink 依設定組合稽核輸出，log 與 metrics 永遠啟用
//
// 回傳:
//
//	audit.Sink: 組合後的 Sink
//	func(): 關閉所有資源
//	error: 任一輸出初始化失敗
func buildAuditSink(ctx context.Context, cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (audit.Sink, func(), error) {
	var closers []func()
	// enqueue 將較慢的輸出放到輸送帶後面
	enqueue := func(name string, next audit.Sink) audit.Sink {
		q := memory_adapter.NewQueue(next, cfg.Audit.QueueSize, memory_adapter.WithQueueLogger(log.With(zap.String("sink", name))))
		q.Start(ctx)
		closers = append(closers, func() { _ = q.Close() })
		return q
	}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	counter, err := metrics_adapter.NewAuditCounter(reg)
	if err != nil {
		return nil, nil, err
	}
	sinks := []audit.Sink{audit.LogSink(log), counter}

	if cfg.Audit.File.Enabled {
		w, err := wal.Open(cfg.Audit.File.Path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open audit file: %w", err)
		}
		closers = append(closers, func() {
			if err := w.Close(); err != nil {
				log.Warn("close audit file", zap.Error(err))
			}
		})
		sinks = append(sinks, file_adapter.NewAuditLog(w))
		log.Info("audit file sink enabled", zap.String("path", cfg.Audit.File.Path))
	}

	if cfg.Audit.MySQL.Enabled {
		dbClient, err := mysql.NewClient(cfg.Audit.MySQL.MySQL, log)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		closers = append(closers, func() {
			if err := dbClient.Close(); err != nil {
				log.Warn("close mysql", zap.Error(err))
			}
		})
		store := mysql_adapter.NewAuditStore(dbClient)
		if err := store.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to migrate audit table: %w", err)
		}
		sinks = append(sinks, enqueue("mysql", store))
		log.Info("audit mysql sink enabled", zap.String("host", cfg.Audit.MySQL.MySQL.Host))
	}

	if cfg.Audit.Kafka.Enabled {
		publisher := kafka_adapter.NewAuditPublisher(cfg.Audit.Kafka.Kafka)
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				log.Warn("close kafka publisher", zap.Error(err))
			}
		})
		sinks = append(sinks, enqueue("kafka", publisher))
		log.Info("audit kafka sink enabled",
			zap.Strings("brokers", cfg.Audit.Kafka.Kafka.Brokers),
			zap.String("topic", cfg.Audit.Kafka.Kafka.Topic))
	}

	return audit.Multi(sinks...), closeAll, nil
}
