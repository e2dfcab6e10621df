package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/bet-sync/consumer"
	"github.com/betilha/bankroll-engine/internal/ledger-service/reconcile"
	"github.com/betilha/bankroll-engine/internal/ledger-service/repo"
	sharedcache "github.com/betilha/bankroll-engine/internal/shared/cache"
	"github.com/betilha/bankroll-engine/internal/shared/config"
	"github.com/betilha/bankroll-engine/internal/shared/db"
	"github.com/betilha/bankroll-engine/internal/shared/kafka"
	"github.com/betilha/bankroll-engine/internal/shared/logger"
	"github.com/betilha/bankroll-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com Postgres para persistir apostas vindas do bot
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis para notificar o dashboard das mudanças
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka consumer: consome eventos de aposta da integração do bot
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetEvents, "bet-sync")
	defer reader.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicBetEventsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEventsDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_sync_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_sync_bets_persisted_total", Help: "apostas gravadas"})
	reconciled := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_sync_reconciliations_total", Help: "reconciliações concluídas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_sync_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, reconciled, errorsBy)

	repository := repo.NewPostgres(pg)
	proc := &consumer.Processor{
		Log:      log,
		Reader:   reader,
		Store:    repository,
		Rec:      reconcile.New(log, repository),
		Notifier: repo.NewRedisNotifier(rdb),
		DLQ:      dlqWriter,

		OnConsumed:   func() { consumed.Inc() },
		OnPersisted:  func() { persisted.Inc() },
		OnReconciled: func() { reconciled.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bet-sync-worker started", zap.String("consume", cfg.TopicBetEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("bet-sync-worker stopped")
}
