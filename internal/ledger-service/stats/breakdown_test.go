package stats

import (
	"testing"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

func marketBet(market string, outcome model.Outcome, profit float64) model.Bet {
	b := bet(outcome, profit, 2.0, 50, onDay(2025, 3, 10))
	b.Market = market
	return b
}

func TestByMarket(t *testing.T) {
	bets := []model.Bet{
		marketBet("Over 2.5", model.OutcomeGreen, 50),
		marketBet("Over 2.5", model.OutcomeRed, -50),
		marketBet("Ambas Marcam", model.OutcomeGreen, 30),
		marketBet("Over 2.5", model.OutcomePending, 0), // inerte, fora do grupo
	}

	got := ByMarket(bets)
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}
	over := got[0]
	if over.Market != "Over 2.5" || over.Count != 2 || over.Profit != 0 || over.Wins != 1 || over.WinRate != 50 {
		t.Errorf("grupo Over 2.5 = %+v", over)
	}
	if got[1].Market != "Ambas Marcam" || got[1].WinRate != 100 {
		t.Errorf("grupo Ambas Marcam = %+v", got[1])
	}
}

func TestByMarketTopFiveStable(t *testing.T) {
	var bets []model.Bet
	// seis mercados com uma aposta cada: empate total, ordem de inserção decide
	names := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	for _, n := range names {
		bets = append(bets, marketBet(n, model.OutcomeGreen, 10))
	}
	// m6 ganha uma aposta extra e sobe para o topo
	bets = append(bets, marketBet("m6", model.OutcomeGreen, 10))

	got := ByMarket(bets)
	if len(got) != topMarkets {
		t.Fatalf("len = %d; want %d", len(got), topMarkets)
	}
	wantOrder := []string{"m6", "m1", "m2", "m3", "m4"}
	for i, w := range wantOrder {
		if got[i].Market != w {
			t.Errorf("pos %d = %s; want %s", i, got[i].Market, w)
		}
	}
}

func TestByOddsRange(t *testing.T) {
	mk := func(odds float64, outcome model.Outcome, profit float64) model.Bet {
		return bet(outcome, profit, odds, 50, onDay(2025, 3, 10))
	}
	bets := []model.Bet{
		mk(1.50, model.OutcomeGreen, 25), // limite superior da primeira faixa
		mk(1.51, model.OutcomeRed, -50),  // primeiro valor da segunda
		mk(3.01, model.OutcomeGreen, 100),
		mk(5.00, model.OutcomeRed, -50),
		mk(2.2, model.OutcomePending, 0), // inerte, não emite faixa
	}

	got := ByOddsRange(bets)
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3: %+v", len(got), got)
	}
	if got[0].Range != "1.01-1.50" || got[0].Count != 1 || got[0].WinRate != 100 {
		t.Errorf("faixa 0 = %+v", got[0])
	}
	if got[1].Range != "1.51-2.00" || got[1].WinRate != 0 {
		t.Errorf("faixa 1 = %+v", got[1])
	}
	if got[2].Range != "3.01+" || got[2].Count != 2 || got[2].Profit != 50 || got[2].WinRate != 50 {
		t.Errorf("faixa 2 = %+v", got[2])
	}
}

func TestByStakeRange(t *testing.T) {
	mk := func(stake, profit float64) model.Bet {
		return bet(model.OutcomeGreen, profit, 2.0, stake, onDay(2025, 3, 10))
	}
	bets := []model.Bet{
		mk(25, 25),   // faixa 0-25
		mk(26, -13),  // faixa 26-50
		mk(50, 39),   // faixa 26-50
		mk(150, 150), // faixa 101+
	}

	got := ByStakeRange(bets)
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3: %+v", len(got), got)
	}
	if got[0].Range != "0-25" || got[0].ROI != 100 {
		t.Errorf("faixa 0 = %+v", got[0])
	}
	mid := got[1]
	if mid.Range != "26-50" || mid.Count != 2 || mid.Profit != 26 {
		t.Errorf("faixa 1 = %+v", mid)
	}
	// ROI da faixa: 26 / 76 * 100
	if mid.ROI != 34.21 {
		t.Errorf("ROI = %v; want 34.21", mid.ROI)
	}
	if got[2].Range != "101+" {
		t.Errorf("faixa 2 = %+v", got[2])
	}
}

func TestBreakdownsReconcileWithTotals(t *testing.T) {
	bets := []model.Bet{
		marketBet("Over 2.5", model.OutcomeGreen, 80),
		marketBet("Escanteios", model.OutcomeRed, -50),
		marketBet("Ambas Marcam", model.OutcomeCashout, 12.5),
		marketBet("Over 2.5", model.OutcomeVoid, 0),
	}
	total := Compute(bets, Params{StartingBankroll: 1000}).ProfitLoss

	sum := func(profits []float64) float64 {
		var s float64
		for _, p := range profits {
			s += p
		}
		return model.Round2(s)
	}

	var byMarket, byOdds, byStake []float64
	for _, g := range ByMarket(bets) {
		byMarket = append(byMarket, g.Profit)
	}
	for _, g := range ByOddsRange(bets) {
		byOdds = append(byOdds, g.Profit)
	}
	for _, g := range ByStakeRange(bets) {
		byStake = append(byStake, g.Profit)
	}

	for name, profits := range map[string][]float64{
		"mercado": byMarket,
		"odds":    byOdds,
		"stake":   byStake,
	} {
		if got := sum(profits); got != total {
			t.Errorf("soma por %s = %v; want %v", name, got, total)
		}
	}
}

func TestWinLossSplit(t *testing.T) {
	d := onDay(2025, 3, 10)
	bets := []model.Bet{
		bet(model.OutcomeGreen, 100, 2, 100, d),
		bet(model.OutcomeGreen, 50, 2, 50, d),
		bet(model.OutcomeCashout, 10, 2, 50, d), // não é vitória nem derrota
	}

	got := WinLossSplit(bets)
	if len(got) != 1 {
		t.Fatalf("len = %d; want 1 (lado RED vazio é omitido)", len(got))
	}
	if got[0].Result != "GREEN" || got[0].Count != 2 || got[0].Profit != 150 {
		t.Errorf("GREEN = %+v", got[0])
	}

	if out := WinLossSplit(nil); len(out) != 0 {
		t.Errorf("vazio deveria devolver lista vazia: %+v", out)
	}
}
