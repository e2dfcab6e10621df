package dto

import (
	"time"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// BetResponse é a aposta como devolvida pela API.
type BetResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Match     string    `json:"partida"`
	Market    string    `json:"market"`
	Outcome   string    `json:"resultado"`
	Profit    float64   `json:"lucro_perda"`
	Odds      float64   `json:"odd"`
	Stake     float64   `json:"stake_valor"`
	PlacedAt  string    `json:"aposta_data"`
	CreatedAt time.Time `json:"created_at"`
}

// FromBet converte o modelo de domínio para a resposta da API.
func FromBet(b model.Bet) BetResponse {
	return BetResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		Match:     b.Match,
		Market:    b.Market,
		Outcome:   string(b.Outcome),
		Profit:    b.ProfitLoss,
		Odds:      b.Odds,
		Stake:     b.Stake,
		PlacedAt:  b.PlacedAt.Format("2006-01-02"),
		CreatedAt: b.CreatedAt,
	}
}

// MutationResponse informa o resultado de uma mutação e se o saldo foi
// reconciliado com sucesso na sequência.
type MutationResponse struct {
	Bet        *BetResponse `json:"bet,omitempty"`
	Reconciled bool         `json:"reconciled"`
	Balance    float64      `json:"balance,omitempty"`
}
