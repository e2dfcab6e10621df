package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	lcache "github.com/betilha/bankroll-engine/internal/ledger-service/cache"
	lhttp "github.com/betilha/bankroll-engine/internal/ledger-service/http"
	"github.com/betilha/bankroll-engine/internal/ledger-service/live"
	"github.com/betilha/bankroll-engine/internal/ledger-service/reconcile"
	"github.com/betilha/bankroll-engine/internal/ledger-service/repo"
	"github.com/betilha/bankroll-engine/internal/ledger-service/ws"
	sharedcache "github.com/betilha/bankroll-engine/internal/shared/cache"
	"github.com/betilha/bankroll-engine/internal/shared/config"
	"github.com/betilha/bankroll-engine/internal/shared/db"
	"github.com/betilha/bankroll-engine/internal/shared/logger"
	"github.com/betilha/bankroll-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (feed de mudanças + cache de estatísticas)
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// deps
	repository := repo.NewPostgres(pg)
	notifier := repo.NewRedisNotifier(rdb)
	reconciler := reconcile.New(log, repository)
	statsCache := lcache.NewStatsCache(rdb, time.Duration(cfg.StatsCacheTTLSeconds)*time.Second)

	// hub WebSocket + sincronização ao vivo por usuário
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	feed := live.NewRedisFeed(log, rdb)
	manager := live.NewManager(log, feed, repository, statsCache, func(userID string, snap live.Snapshot) {
		hub.Broadcast(userID, snap)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub.OnFirstSub = func(userID string) { manager.HandleSubscribe(ctx, userID) }
	hub.OnLastUnsub = manager.HandleUnsubscribe
	defer manager.StopAll()

	// HTTP público
	api := lhttp.NewServer(log, repository, reconciler, notifier, statsCache, hub.HandleWS)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("ledger-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
