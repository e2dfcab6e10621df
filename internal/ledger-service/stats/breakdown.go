package stats

import (
	"fmt"
	"sort"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// Limite de grupos no desempenho por mercado (mercados mais apostados).
const topMarkets = 5

// Fronteiras dos buckets de odds e de stake. São constantes de apresentação,
// não regra de negócio.
var (
	oddsBounds  = []float64{1.5, 2.0, 2.5, 3.0}
	stakeBounds = []float64{25, 50, 100}
)

// MarketGroup é o desempenho agregado de um mercado.
type MarketGroup struct {
	Market  string  `json:"market"`
	Count   int     `json:"count"`
	Profit  float64 `json:"profit"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// OddsBucket agrega apostas por faixa de odd.
type OddsBucket struct {
	Range   string  `json:"range"`
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
	Profit  float64 `json:"profit"`
}

// StakeBucket agrega apostas por faixa de stake.
type StakeBucket struct {
	Range  string  `json:"range"`
	Count  int     `json:"count"`
	Profit float64 `json:"profit"`
	ROI    float64 `json:"roi"`
}

// ResultSlice é um lado da divisão vitórias/derrotas.
type ResultSlice struct {
	Result string  `json:"result"` // "GREEN" | "RED"
	Count  int     `json:"count"`
	Profit float64 `json:"profit"`
}

// ByMarket agrupa apostas financeiras por mercado, ordena por volume de
// apostas (desc, empate mantém ordem de inserção) e devolve os 5 primeiros.
func ByMarket(bets []model.Bet) []MarketGroup {
	idx := make(map[string]int)
	groups := make([]MarketGroup, 0)
	wins := make([]int, 0)
	losses := make([]int, 0)

	for _, b := range bets {
		if !b.Outcome.Financial() {
			continue
		}
		i, ok := idx[b.Market]
		if !ok {
			i = len(groups)
			idx[b.Market] = i
			groups = append(groups, MarketGroup{Market: b.Market})
			wins = append(wins, 0)
			losses = append(losses, 0)
		}
		groups[i].Count++
		groups[i].Profit += b.ProfitLoss
		switch b.Outcome {
		case model.OutcomeGreen:
			wins[i]++
		case model.OutcomeRed:
			losses[i]++
		}
	}

	for i := range groups {
		groups[i].Wins = wins[i]
		groups[i].Profit = model.Round2(groups[i].Profit)
		if decided := wins[i] + losses[i]; decided > 0 {
			groups[i].WinRate = model.Round2(float64(wins[i]) / float64(decided) * 100)
		}
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Count > groups[b].Count })
	if len(groups) > topMarkets {
		groups = groups[:topMarkets]
	}
	return groups
}

// bucketFor devolve o índice do bucket para um valor dadas as fronteiras
// (<=bounds[0], <=bounds[1], ..., acima da última).
func bucketFor(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v <= b {
			return i
		}
	}
	return len(bounds)
}

// oddsRangeLabel devolve o rótulo da faixa de odds como exibido no gráfico.
func oddsRangeLabel(i int) string {
	switch i {
	case 0:
		return "1.01-1.50"
	case len(oddsBounds):
		return fmt.Sprintf("%.2f+", oddsBounds[len(oddsBounds)-1]+0.01)
	default:
		return fmt.Sprintf("%.2f-%.2f", oddsBounds[i-1]+0.01, oddsBounds[i])
	}
}

// stakeRangeLabel devolve o rótulo da faixa de stake.
func stakeRangeLabel(i int) string {
	switch i {
	case 0:
		return fmt.Sprintf("0-%.0f", stakeBounds[0])
	case len(stakeBounds):
		return fmt.Sprintf("%.0f+", stakeBounds[len(stakeBounds)-1]+1)
	default:
		return fmt.Sprintf("%.0f-%.0f", stakeBounds[i-1]+1, stakeBounds[i])
	}
}

// ByOddsRange agrupa apostas financeiras em faixas fixas de odd.
// Só faixas com pelo menos uma aposta são emitidas, em ordem crescente.
func ByOddsRange(bets []model.Bet) []OddsBucket {
	n := len(oddsBounds) + 1
	counts := make([]int, n)
	wins := make([]int, n)
	losses := make([]int, n)
	profit := make([]float64, n)

	for _, b := range bets {
		if !b.Outcome.Financial() {
			continue
		}
		i := bucketFor(b.Odds, oddsBounds)
		counts[i]++
		profit[i] += b.ProfitLoss
		switch b.Outcome {
		case model.OutcomeGreen:
			wins[i]++
		case model.OutcomeRed:
			losses[i]++
		}
	}

	out := make([]OddsBucket, 0, n)
	for i := 0; i < n; i++ {
		if counts[i] == 0 {
			continue
		}
		bucket := OddsBucket{
			Range:  oddsRangeLabel(i),
			Count:  counts[i],
			Wins:   wins[i],
			Profit: model.Round2(profit[i]),
		}
		if decided := wins[i] + losses[i]; decided > 0 {
			bucket.WinRate = model.Round2(float64(wins[i]) / float64(decided) * 100)
		}
		out = append(out, bucket)
	}
	return out
}

// ByStakeRange agrupa apostas financeiras em faixas fixas de stake, com ROI
// por faixa (lucro / stake total da faixa).
func ByStakeRange(bets []model.Bet) []StakeBucket {
	n := len(stakeBounds) + 1
	counts := make([]int, n)
	profit := make([]float64, n)
	staked := make([]float64, n)

	for _, b := range bets {
		if !b.Outcome.Financial() {
			continue
		}
		i := bucketFor(b.Stake, stakeBounds)
		counts[i]++
		profit[i] += b.ProfitLoss
		staked[i] += b.Stake
	}

	out := make([]StakeBucket, 0, n)
	for i := 0; i < n; i++ {
		if counts[i] == 0 {
			continue
		}
		bucket := StakeBucket{
			Range:  stakeRangeLabel(i),
			Count:  counts[i],
			Profit: model.Round2(profit[i]),
		}
		if staked[i] > 0 {
			bucket.ROI = model.Round2(profit[i] / staked[i] * 100)
		}
		out = append(out, bucket)
	}
	return out
}

// WinLossSplit divide as apostas decididas em vitórias e derrotas, com
// contagem e lucro por lado. Lados vazios são omitidos.
func WinLossSplit(bets []model.Bet) []ResultSlice {
	var green, red ResultSlice
	green.Result = string(model.OutcomeGreen)
	red.Result = string(model.OutcomeRed)

	for _, b := range bets {
		switch b.Outcome {
		case model.OutcomeGreen:
			green.Count++
			green.Profit += b.ProfitLoss
		case model.OutcomeRed:
			red.Count++
			red.Profit += b.ProfitLoss
		}
	}
	green.Profit = model.Round2(green.Profit)
	red.Profit = model.Round2(red.Profit)

	out := make([]ResultSlice, 0, 2)
	if green.Count > 0 {
		out = append(out, green)
	}
	if red.Count > 0 {
		out = append(out, red)
	}
	return out
}
