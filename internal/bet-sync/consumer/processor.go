package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
	"github.com/betilha/bankroll-engine/internal/ledger-service/repo"
	sharedkafka "github.com/betilha/bankroll-engine/internal/shared/kafka"
	"github.com/betilha/bankroll-engine/pkg/contracts/events"
)

// Store define as operações de persistência usadas pelo worker.
type Store interface {
	CreateBet(ctx context.Context, in repo.BetInput) (model.Bet, error)
}

// Reconciler recalcula o saldo do usuário após a escrita.
type Reconciler interface {
	Reconcile(ctx context.Context, userID string) (float64, error)
}

// Notifier avisa o feed ao vivo que o ledger do usuário mudou.
type Notifier interface {
	NotifyChange(ctx context.Context, userID, table, op string) error
}

// Processor consome apostas publicadas pela integração do bot, persiste no
// ledger, reconcilia o saldo e notifica o dashboard.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log      *zap.Logger
	Reader   *kafka.Reader
	Store    Store
	Rec      Reconciler
	Notifier Notifier
	DLQ      *kafka.Writer // opcional

	OnConsumed   func()       // métricas (counter++)
	OnPersisted  func()       // métricas
	OnReconciled func()       // métricas
	OnError      func(string) // métricas por fase
}

var errInvalidEvent = errors.New("invalid bet event")

// toInput valida e coage um evento do bot para a entrada do repositório.
func toInput(ev events.BetEvent) (repo.BetInput, error) {
	outcome := model.Outcome(ev.Outcome)
	if ev.UserID == "" || ev.Match == "" || ev.Market == "" || !outcome.Valid() {
		return repo.BetInput{}, errInvalidEvent
	}
	odds := model.ParseDecimal(ev.OddsStr)
	stake := model.ParseDecimal(ev.StakeStr)
	if odds <= 1 || stake <= 0 {
		return repo.BetInput{}, errInvalidEvent
	}
	placedAt := ev.PlacedAt
	if placedAt == "" {
		placedAt = time.Now().UTC().Format("2006-01-02")
	}

	in := repo.BetInput{
		UserID:   ev.UserID,
		Match:    ev.Match,
		Market:   ev.Market,
		Outcome:  ev.Outcome,
		Odds:     odds,
		Stake:    stake,
		PlacedAt: placedAt,
	}
	// o bot só envia lucro explícito quando o resultado exige (CASHOUT)
	if ev.ProfitStr != "" {
		p := model.ParseDecimal(ev.ProfitStr)
		in.Profit = &p
	}
	return in, nil
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.BetEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m)
			continue
		}

		if err := p.processOne(ctx, ev); err != nil {
			p.Log.Warn("process bet event",
				zap.String("eventId", ev.EventID),
				zap.String("userId", ev.UserID),
				zap.Error(err),
			)
			if errors.Is(err, errInvalidEvent) {
				p.toDLQ(ctx, m)
			}
		}
	}
}

// processOne persiste uma aposta do bot e executa os passos pós-mutação.
func (p *Processor) processOne(ctx context.Context, ev events.BetEvent) error {
	in, err := toInput(ev)
	if err != nil {
		if p.OnError != nil {
			p.OnError("validate")
		}
		return err
	}

	bet, err := p.Store.CreateBet(ctx, in)
	if err != nil {
		if p.OnError != nil {
			p.OnError("persist")
		}
		return err
	}
	if p.OnPersisted != nil {
		p.OnPersisted()
	}

	// aposta VOID não dispara reconciliação
	if bet.Outcome != model.OutcomeVoid {
		if _, err := p.Rec.Reconcile(ctx, bet.UserID); err != nil {
			// a aposta já está gravada; o saldo se corrige na próxima mutação
			p.Log.Warn("reconcile after bot bet", zap.String("userId", bet.UserID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("reconcile")
			}
		} else if p.OnReconciled != nil {
			p.OnReconciled()
		}
	}

	if p.Notifier != nil {
		if err := p.Notifier.NotifyChange(ctx, bet.UserID, "bets", "INSERT"); err != nil {
			p.Log.Warn("notify change", zap.Error(err))
			if p.OnError != nil {
				p.OnError("notify")
			}
		}
	}
	return nil
}

// toDLQ encaminha a mensagem original para a fila de descarte, quando há uma.
func (p *Processor) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sharedkafka.WriteJSON(wctx, p.DLQ, string(m.Key), m.Value); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}
