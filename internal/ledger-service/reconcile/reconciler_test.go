package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

type fakeStore struct {
	bets     []model.Bet
	user     model.User
	fetchErr error
	userErr  error
	writeErr error

	written []float64
}

func (f *fakeStore) FetchBetsForUser(ctx context.Context, userID string) ([]model.Bet, error) {
	return f.bets, f.fetchErr
}

func (f *fakeStore) FetchUser(ctx context.Context, userID string) (model.User, error) {
	return f.user, f.userErr
}

func (f *fakeStore) WriteUserBalance(ctx context.Context, userID string, balance float64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, balance)
	return nil
}

func settled(outcome model.Outcome, profit float64) model.Bet {
	return model.Bet{
		UserID:     "u1",
		Outcome:    outcome,
		ProfitLoss: profit,
		Odds:       2,
		Stake:      50,
		PlacedAt:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestReconcile(t *testing.T) {
	store := &fakeStore{
		bets: []model.Bet{
			settled(model.OutcomeGreen, 100),
			settled(model.OutcomeRed, -50),
			settled(model.OutcomeCashout, 12.5),
			settled(model.OutcomePending, 999), // inerte, fora da soma
			settled(model.OutcomeVoid, 999),
		},
		user: model.User{ID: "u1", StartingBankroll: 1000},
	}
	r := New(zap.NewNop(), store)

	balance, err := r.Reconcile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1062.5, balance)
	require.Len(t, store.written, 1)
	assert.Equal(t, 1062.5, store.written[0])
}

func TestReconcileBankrollFallback(t *testing.T) {
	store := &fakeStore{user: model.User{ID: "u1"}} // banca_inicial ausente
	r := New(zap.NewNop(), store)

	balance, err := r.Reconcile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(model.DefaultStartingBankroll), balance)
}

func TestReconcileIdempotent(t *testing.T) {
	store := &fakeStore{
		bets: []model.Bet{settled(model.OutcomeGreen, 100)},
		user: model.User{ID: "u1", StartingBankroll: 1000},
	}
	r := New(zap.NewNop(), store)

	first, err := r.Reconcile(context.Background(), "u1")
	require.NoError(t, err)
	second, err := r.Reconcile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconcileErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{"falha ao buscar apostas", &fakeStore{fetchErr: boom}},
		{"falha ao buscar usuário", &fakeStore{userErr: boom}},
		{"falha ao gravar saldo", &fakeStore{writeErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(zap.NewNop(), tt.store)
			_, err := r.Reconcile(context.Background(), "u1")
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Empty(t, tt.store.written)
		})
	}
}

func TestSettledSumOrderIndependent(t *testing.T) {
	a := []model.Bet{
		settled(model.OutcomeGreen, 100),
		settled(model.OutcomeRed, -50),
		settled(model.OutcomeCashout, 25),
	}
	b := []model.Bet{a[2], a[0], a[1]}

	assert.Equal(t, SettledSum(a), SettledSum(b))
}

func TestShouldReconcile(t *testing.T) {
	assert.False(t, ShouldReconcile(model.OutcomeVoid))
	assert.True(t, ShouldReconcile(model.OutcomeGreen))
	assert.True(t, ShouldReconcile(model.OutcomeRed))
	assert.True(t, ShouldReconcile(model.OutcomePending))
	assert.True(t, ShouldReconcile(model.OutcomeCashout))
}
