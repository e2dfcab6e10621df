package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// Store define as operações de armazenamento usadas pela reconciliação.
type Store interface {
	FetchBetsForUser(ctx context.Context, userID string) ([]model.Bet, error)
	FetchUser(ctx context.Context, userID string) (model.User, error)
	WriteUserBalance(ctx context.Context, userID string, balance float64) error
}

// Reconciler recalcula o saldo_banca de um usuário a partir do histórico
// completo de apostas e o grava de volta no registro.
type Reconciler struct {
	log   *zap.Logger
	store Store
}

func New(log *zap.Logger, store Store) *Reconciler {
	return &Reconciler{log: log, store: store}
}

// SettledSum soma o lucro_perda das apostas financeiras (GREEN/RED/CASHOUT).
// A soma é independente de ordem.
func SettledSum(bets []model.Bet) float64 {
	var sum float64
	for _, b := range bets {
		if b.Outcome.Financial() {
			sum += b.ProfitLoss
		}
	}
	return sum
}

// Reconcile lê um snapshot das apostas e da banca inicial do usuário, calcula
// saldo = banca_inicial + Σ lucro_perda das apostas financeiras e grava o
// resultado. Sem retry e sem rollback da mutação que disparou a chamada: uma
// falha aqui deixa o saldo divergente até a próxima reconciliação.
func (r *Reconciler) Reconcile(ctx context.Context, userID string) (float64, error) {
	bets, err := r.store.FetchBetsForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reconcile fetch bets: %w", err)
	}

	user, err := r.store.FetchUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reconcile fetch user: %w", err)
	}

	balance := user.StartingBankrollOrDefault() + SettledSum(bets)
	if err := r.store.WriteUserBalance(ctx, userID, balance); err != nil {
		return 0, fmt.Errorf("reconcile write balance: %w", err)
	}

	r.log.Debug("balance reconciled",
		zap.String("userId", userID),
		zap.Float64("balance", balance),
		zap.Int("bets", len(bets)),
	)
	return balance, nil
}

// ShouldReconcile aplica a regra de disparo para criação/edição: resultado
// VOID não dispara. Exclusões disparam sempre, direto no chamador.
func ShouldReconcile(outcome model.Outcome) bool {
	return outcome != model.OutcomeVoid
}
