package stats

import (
	"time"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// Params controla o cálculo das estatísticas do dashboard.
// CurrentBalance, From e To são opcionais; StartingBankroll deve vir já
// resolvido (com fallback aplicado) pelo chamador.
type Params struct {
	CurrentBalance   *float64
	StartingBankroll float64
	From             *time.Time
	To               *time.Time
}

// Stats é o conjunto de métricas exibido no dashboard.
// Todos os valores monetários e percentuais saem arredondados a 2 casas.
type Stats struct {
	Balance          float64 `json:"balance"`
	ROI              float64 `json:"roi"`
	ProfitLoss       float64 `json:"profit_loss"`
	BetCount         int     `json:"bet_count"`
	WinRate          float64 `json:"win_rate"`
	AverageStake     float64 `json:"average_stake"`
	AverageOdds      float64 `json:"average_odds"`
	InitialBalance   float64 `json:"initial_balance"`
	ProfitPercentage float64 `json:"profit_percentage"`
}

// inRange aplica o filtro de período inclusivo sobre aposta_data.
func inRange(b model.Bet, from, to *time.Time) bool {
	if from != nil && b.PlacedAt.Before(*from) {
		return false
	}
	if to != nil && b.PlacedAt.After(*to) {
		return false
	}
	return true
}

// FilterRange devolve o subconjunto de apostas dentro do período, quando há período.
func FilterRange(bets []model.Bet, from, to *time.Time) []model.Bet {
	if from == nil && to == nil {
		return bets
	}
	out := make([]model.Bet, 0, len(bets))
	for _, b := range bets {
		if inRange(b, from, to) {
			out = append(out, b)
		}
	}
	return out
}

// Compute calcula as métricas do dashboard a partir da lista de apostas.
//
// Regra de classificação aplicada de forma uniforme: GREEN/RED/CASHOUT são
// financeiras e entram em todas as somas; VOID/PENDING são inertes e só
// contam em BetCount. BetCount reflete a lista de entrada sem filtro de data,
// de propósito: quem quiser contagem filtrada passa a lista já recortada.
func Compute(bets []model.Bet, p Params) Stats {
	filtered := FilterRange(bets, p.From, p.To)

	var (
		totalStake  float64
		totalProfit float64
		oddsSum     float64
		financial   int
		wins        int
		decided     int
	)
	for _, b := range filtered {
		if !b.Outcome.Financial() {
			continue
		}
		financial++
		totalStake += b.Stake
		totalProfit += b.ProfitLoss
		oddsSum += b.Odds
		if b.Outcome.Decided() {
			decided++
			if b.Outcome == model.OutcomeGreen {
				wins++
			}
		}
	}

	// Saldo: com período ativo, banca inicial + lucro do recorte; sem período,
	// usa o saldo persistido quando informado, senão stake+lucro totais.
	var balance float64
	switch {
	case p.From != nil || p.To != nil:
		balance = p.StartingBankroll + totalProfit
	case p.CurrentBalance != nil:
		balance = *p.CurrentBalance
	default:
		balance = totalStake + totalProfit
	}

	s := Stats{
		Balance:        model.Round2(balance),
		ProfitLoss:     model.Round2(totalProfit),
		BetCount:       len(bets),
		InitialBalance: model.Round2(p.StartingBankroll),
	}
	if totalStake > 0 {
		s.ROI = model.Round2(totalProfit / totalStake * 100)
	}
	if decided > 0 {
		s.WinRate = model.Round2(float64(wins) / float64(decided) * 100)
	}
	if financial > 0 {
		s.AverageStake = model.Round2(totalStake / float64(financial))
		s.AverageOdds = model.Round2(oddsSum / float64(financial))
	}
	if p.StartingBankroll > 0 {
		s.ProfitPercentage = model.Round2(totalProfit / p.StartingBankroll * 100)
	}
	return s
}
