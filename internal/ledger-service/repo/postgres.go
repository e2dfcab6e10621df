package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// Postgres implementa o adaptador de armazenamento de apostas e usuários.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório do ledger.
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound = errors.New("not found")
)

// formatDecimal serializa um valor monetário para as colunas de texto.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// parsePlacedAt interpreta aposta_data (YYYY-MM-DD) fixando meio-dia UTC.
func parsePlacedAt(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		// aceita timestamps completos vindos de registros antigos
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse aposta_data %q: %w", s, err)
		}
	}
	return model.Midday(t), nil
}

// toBet converte uma linha persistida para o modelo de domínio, aplicando a
// fronteira de coerção numérica.
func toBet(r betRow, createdAt time.Time) (model.Bet, error) {
	placed, err := parsePlacedAt(r.PlacedAt)
	if err != nil {
		return model.Bet{}, err
	}
	return model.Bet{
		ID:         r.ID,
		UserID:     r.UserID,
		Match:      r.Match,
		Market:     r.Market,
		Outcome:    model.Outcome(r.Outcome),
		ProfitLoss: model.ParseDecimal(r.Profit),
		Odds:       model.ParseDecimal(r.Odds),
		Stake:      model.ParseDecimal(r.Stake),
		PlacedAt:   placed,
		CreatedAt:  createdAt,
	}, nil
}

// FetchBetsForUser retorna todas as apostas do usuário, mais recentes primeiro.
func (p *Postgres) FetchBetsForUser(ctx context.Context, userID string) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, partida, market, resultado, lucro_perda, odd, stake_valor, aposta_data, created_at
		FROM bets WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var out []model.Bet
	for rows.Next() {
		var r betRow
		var createdAt time.Time
		if err := rows.Scan(&r.ID, &r.UserID, &r.Match, &r.Market, &r.Outcome,
			&r.Profit, &r.Odds, &r.Stake, &r.PlacedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		b, err := toBet(r, createdAt)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBet retorna uma aposta pelo id.
func (p *Postgres) GetBet(ctx context.Context, id string) (model.Bet, error) {
	var r betRow
	var createdAt time.Time
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, partida, market, resultado, lucro_perda, odd, stake_valor, aposta_data, created_at
		FROM bets WHERE id=$1`, id).
		Scan(&r.ID, &r.UserID, &r.Match, &r.Market, &r.Outcome, &r.Profit, &r.Odds, &r.Stake, &r.PlacedAt, &createdAt)
	if err == sql.ErrNoRows {
		return model.Bet{}, ErrNotFound
	}
	if err != nil {
		return model.Bet{}, err
	}
	return toBet(r, createdAt)
}

// CreateBet insere uma nova aposta. O lucro é derivado do resultado quando não
// é informado; aposta_data é normalizada para meio-dia UTC.
func (p *Postgres) CreateBet(ctx context.Context, in BetInput) (model.Bet, error) {
	placed, err := parsePlacedAt(in.PlacedAt)
	if err != nil {
		return model.Bet{}, err
	}

	profit := model.DeriveProfit(model.Outcome(in.Outcome), in.Stake, in.Odds)
	if in.Profit != nil {
		profit = *in.Profit
	}

	id := uuid.NewString()
	var createdAt time.Time
	err = p.db.QueryRowContext(ctx, `
		INSERT INTO bets (id, user_id, partida, market, resultado, lucro_perda, odd, stake_valor, aposta_data, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		RETURNING created_at`,
		id, in.UserID, in.Match, in.Market, in.Outcome,
		formatDecimal(profit), formatDecimal(in.Odds), formatDecimal(in.Stake),
		placed.Format("2006-01-02"),
	).Scan(&createdAt)
	if err != nil {
		return model.Bet{}, fmt.Errorf("insert bet: %w", err)
	}

	return model.Bet{
		ID:         id,
		UserID:     in.UserID,
		Match:      in.Match,
		Market:     in.Market,
		Outcome:    model.Outcome(in.Outcome),
		ProfitLoss: profit,
		Odds:       in.Odds,
		Stake:      in.Stake,
		PlacedAt:   placed,
		CreatedAt:  createdAt,
	}, nil
}

// UpdateBet aplica um patch parcial sobre uma aposta existente.
// Lê a linha atual com lock, recalcula o lucro quando resultado/stake/odd
// mudam sem lucro explícito, e grava a linha completa.
func (p *Postgres) UpdateBet(ctx context.Context, id string, patch BetPatch) (model.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Bet{}, err
	}
	defer tx.Rollback()

	var r betRow
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, partida, market, resultado, lucro_perda, odd, stake_valor, aposta_data, created_at
		FROM bets WHERE id=$1 FOR UPDATE`, id).
		Scan(&r.ID, &r.UserID, &r.Match, &r.Market, &r.Outcome, &r.Profit, &r.Odds, &r.Stake, &r.PlacedAt, &createdAt)
	if err == sql.ErrNoRows {
		return model.Bet{}, ErrNotFound
	}
	if err != nil {
		return model.Bet{}, err
	}

	cur, err := toBet(r, createdAt)
	if err != nil {
		return model.Bet{}, err
	}

	next := cur
	recompute := false
	if patch.Match != nil {
		next.Match = *patch.Match
	}
	if patch.Market != nil {
		next.Market = *patch.Market
	}
	if patch.Outcome != nil {
		next.Outcome = model.Outcome(*patch.Outcome)
		recompute = true
	}
	if patch.Odds != nil {
		next.Odds = *patch.Odds
		recompute = true
	}
	if patch.Stake != nil {
		next.Stake = *patch.Stake
		recompute = true
	}
	if patch.PlacedAt != nil {
		placed, err := parsePlacedAt(*patch.PlacedAt)
		if err != nil {
			return model.Bet{}, err
		}
		next.PlacedAt = placed
	}

	switch {
	case patch.Profit != nil:
		next.ProfitLoss = *patch.Profit
	case recompute && next.Outcome != model.OutcomeCashout:
		// CASHOUT mantém o valor vindo da origem; os demais são derivados
		next.ProfitLoss = model.DeriveProfit(next.Outcome, next.Stake, next.Odds)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bets SET partida=$1, market=$2, resultado=$3, lucro_perda=$4, odd=$5, stake_valor=$6, aposta_data=$7
		WHERE id=$8`,
		next.Match, next.Market, string(next.Outcome),
		formatDecimal(next.ProfitLoss), formatDecimal(next.Odds), formatDecimal(next.Stake),
		next.PlacedAt.Format("2006-01-02"), id)
	if err != nil {
		return model.Bet{}, fmt.Errorf("update bet: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return model.Bet{}, err
	}
	return next, nil
}

// DeleteBet remove uma aposta, garantindo que pertence ao usuário informado.
func (p *Postgres) DeleteBet(ctx context.Context, id, userID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FetchUser retorna o registro do usuário com os campos de banca.
// Colunas nulas viram zero; o fallback da banca inicial fica no domínio.
func (p *Postgres) FetchUser(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	var email, name sql.NullString
	var balance, bankroll, goal sql.NullFloat64
	err := p.db.QueryRowContext(ctx, `
		SELECT id, email, nome, saldo_banca, banca_inicial, meta_mensal
		FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &email, &name, &balance, &bankroll, &goal)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Email = email.String
	u.Name = name.String
	u.Balance = balance.Float64
	u.StartingBankroll = bankroll.Float64
	u.MonthlyGoal = goal.Float64
	return u, nil
}

// WriteUserBalance grava o saldo reconciliado no registro do usuário.
func (p *Postgres) WriteUserBalance(ctx context.Context, userID string, balance float64) error {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET saldo_banca=$1 WHERE id=$2`, balance, userID)
	if err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
