package stats

import (
	"sort"
	"time"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// ChartPoint é um ponto da curva de evolução da banca.
type ChartPoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Balance float64 `json:"balance"`
}

// day trunca para o dia de calendário em UTC. As apostas carregam aposta_data
// fixada ao meio-dia UTC, então a truncagem é estável entre fusos.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GenerateSeries produz a curva acumulada de saldo por dia.
//
// Um ponto sintético ancora a curva um dia antes da primeira aposta, com a
// banca inicial; cada dia seguinte soma o lucro das apostas financeiras do
// dia ao acumulado. Sem apostas, devolve um único ponto {hoje, banca}.
func GenerateSeries(bets []model.Bet, startingBankroll float64, from, to *time.Time) []ChartPoint {
	filtered := FilterRange(bets, from, to)

	sorted := make([]model.Bet, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].PlacedAt.Before(sorted[b].PlacedAt) })

	// Agrupa lucro financeiro por dia, preservando a ordem dos dias.
	// Dias só com apostas inertes (VOID/PENDING) não geram ponto.
	days := make([]time.Time, 0)
	profitByDay := make(map[time.Time]float64)
	for _, b := range sorted {
		if !b.Outcome.Financial() {
			continue
		}
		d := day(b.PlacedAt)
		if _, ok := profitByDay[d]; !ok {
			days = append(days, d)
		}
		profitByDay[d] += b.ProfitLoss
	}

	if len(days) == 0 {
		return []ChartPoint{{
			Date:    day(time.Now()).Format("2006-01-02"),
			Balance: model.Round2(startingBankroll),
		}}
	}

	out := make([]ChartPoint, 0, len(days)+1)
	anchor := days[0].AddDate(0, 0, -1)
	out = append(out, ChartPoint{Date: anchor.Format("2006-01-02"), Balance: model.Round2(startingBankroll)})

	cumulative := startingBankroll
	for _, d := range days {
		cumulative += profitByDay[d]
		out = append(out, ChartPoint{Date: d.Format("2006-01-02"), Balance: model.Round2(cumulative)})
	}
	return out
}
