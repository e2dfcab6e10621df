package model

import "time"

// Resultado de uma aposta, valores como gravados no banco.
type Outcome string

const (
	OutcomeGreen   Outcome = "GREEN"
	OutcomeRed     Outcome = "RED"
	OutcomePending Outcome = "PENDING"
	OutcomeVoid    Outcome = "VOID"
	OutcomeCashout Outcome = "CASHOUT"
)

// DefaultStartingBankroll é usado quando banca_inicial está ausente no registro.
const DefaultStartingBankroll = 100000

// Financial indica se o resultado contribui para somas financeiras.
// VOID e PENDING são inertes: contam apenas em BetCount.
func (o Outcome) Financial() bool {
	return o == OutcomeGreen || o == OutcomeRed || o == OutcomeCashout
}

// Decided indica se o resultado entra no denominador da taxa de acerto
// (apenas GREEN e RED; CASHOUT não é vitória nem derrota).
func (o Outcome) Decided() bool {
	return o == OutcomeGreen || o == OutcomeRed
}

// Valid reporta se o valor é um dos resultados conhecidos.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeGreen, OutcomeRed, OutcomePending, OutcomeVoid, OutcomeCashout:
		return true
	}
	return false
}

// Bet é uma aposta do ledger.
// ProfitLoss, Odds e Stake chegam do banco como texto e já passaram pela
// coerção de ParseDecimal quando o struct é construído pelo repo.
type Bet struct {
	ID         string
	UserID     string
	Match      string // partida
	Market     string
	Outcome    Outcome
	ProfitLoss float64 // lucro_perda; significativo apenas para GREEN/RED/CASHOUT
	Odds       float64
	Stake      float64
	PlacedAt   time.Time // aposta_data, sempre meio-dia UTC
	CreatedAt  time.Time
}

// User é o registro do usuário com os campos de banca.
type User struct {
	ID               string
	Email            string
	Name             string
	Balance          float64 // saldo_banca, cache reconciliado
	StartingBankroll float64 // banca_inicial
	MonthlyGoal      float64 // meta_mensal
}

// StartingBankrollOrDefault retorna banca_inicial ou o fallback quando ausente.
func (u User) StartingBankrollOrDefault() float64 {
	if u.StartingBankroll <= 0 {
		return DefaultStartingBankroll
	}
	return u.StartingBankroll
}

// MergeUser aplica o merge de campos pegajosos: campos ausentes/zerados em um
// payload parcial mantêm o valor anterior, para não perder banca_inicial e
// meta_mensal em atualizações estreitas (ex.: só saldo_banca).
func MergeUser(prev, next User) User {
	merged := next
	if merged.ID == "" {
		merged.ID = prev.ID
	}
	if merged.Email == "" {
		merged.Email = prev.Email
	}
	if merged.Name == "" {
		merged.Name = prev.Name
	}
	if merged.StartingBankroll == 0 {
		merged.StartingBankroll = prev.StartingBankroll
	}
	if merged.MonthlyGoal == 0 {
		merged.MonthlyGoal = prev.MonthlyGoal
	}
	return merged
}

// DeriveProfit calcula lucro_perda a partir do resultado.
// GREEN: stake*(odds-1); RED: -stake. CASHOUT carrega valor próprio vindo da
// origem e não é derivado aqui; VOID/PENDING não têm lucro.
func DeriveProfit(outcome Outcome, stake, odds float64) float64 {
	switch outcome {
	case OutcomeGreen:
		return stake * (odds - 1)
	case OutcomeRed:
		return -stake
	}
	return 0
}

// Midday normaliza uma data para meio-dia UTC, evitando que truncagem por dia
// mude de calendário conforme o fuso.
func Midday(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
