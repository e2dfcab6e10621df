package model

import (
	"testing"
	"time"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"inteiro", "100", 100},
		{"decimal ponto", "85.50", 85.5},
		{"decimal vírgula", "85,50", 85.5},
		{"negativo", "-50", -50},
		{"vazio", "", 0},
		{"espaços", "  42.0  ", 42},
		{"lixo", "abc", 0},
		{"parcialmente numérico", "12abc", 0},
		{"NaN textual", "NaN", 0},
		{"infinito", "Inf", 0},
		{"infinito negativo", "-inf", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDecimal(tt.in); got != tt.want {
				t.Errorf("ParseDecimal(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{33.333333, 33.33},
		{-50.006, -50.01},
		{0.1 + 0.2, 0.3},
		{100, 100},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestDeriveProfit(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		stake   float64
		odds    float64
		want    float64
	}{
		{"green", OutcomeGreen, 100, 2.0, 100},
		{"red", OutcomeRed, 50, 1.5, -50},
		{"pending", OutcomePending, 30, 1.8, 0},
		{"void", OutcomeVoid, 30, 1.8, 0},
		{"cashout não derivado", OutcomeCashout, 100, 2.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveProfit(tt.outcome, tt.stake, tt.odds); got != tt.want {
				t.Errorf("DeriveProfit(%s, %v, %v) = %v; want %v", tt.outcome, tt.stake, tt.odds, got, tt.want)
			}
		})
	}
}

func TestOutcomeClassification(t *testing.T) {
	financial := []Outcome{OutcomeGreen, OutcomeRed, OutcomeCashout}
	inert := []Outcome{OutcomeVoid, OutcomePending}

	for _, o := range financial {
		if !o.Financial() {
			t.Errorf("%s deveria ser financeiro", o)
		}
	}
	for _, o := range inert {
		if o.Financial() {
			t.Errorf("%s não deveria ser financeiro", o)
		}
	}
	if !OutcomeGreen.Decided() || !OutcomeRed.Decided() {
		t.Error("GREEN e RED devem contar na taxa de acerto")
	}
	if OutcomeCashout.Decided() {
		t.Error("CASHOUT não entra no denominador da taxa de acerto")
	}
	if Outcome("BLUE").Valid() {
		t.Error("resultado desconhecido não deveria ser válido")
	}
}

func TestMergeUserStickyFields(t *testing.T) {
	prev := User{
		ID:               "u1",
		Email:            "a@b.com",
		Name:             "Ana",
		Balance:          1200,
		StartingBankroll: 5000,
		MonthlyGoal:      800,
	}

	// payload parcial só com saldo novo não pode apagar banca_inicial/meta_mensal
	next := User{ID: "u1", Balance: 1300}
	merged := MergeUser(prev, next)

	if merged.Balance != 1300 {
		t.Errorf("Balance = %v; want 1300", merged.Balance)
	}
	if merged.StartingBankroll != 5000 {
		t.Errorf("StartingBankroll = %v; want 5000", merged.StartingBankroll)
	}
	if merged.MonthlyGoal != 800 {
		t.Errorf("MonthlyGoal = %v; want 800", merged.MonthlyGoal)
	}
	if merged.Email != "a@b.com" || merged.Name != "Ana" {
		t.Errorf("campos de perfil não preservados: %+v", merged)
	}

	// valores presentes no payload vencem
	merged = MergeUser(prev, User{ID: "u1", StartingBankroll: 7000})
	if merged.StartingBankroll != 7000 {
		t.Errorf("StartingBankroll = %v; want 7000", merged.StartingBankroll)
	}
}

func TestStartingBankrollOrDefault(t *testing.T) {
	if got := (User{}).StartingBankrollOrDefault(); got != DefaultStartingBankroll {
		t.Errorf("fallback = %v; want %v", got, DefaultStartingBankroll)
	}
	if got := (User{StartingBankroll: 1000}).StartingBankrollOrDefault(); got != 1000 {
		t.Errorf("got %v; want 1000", got)
	}
}

func TestMidday(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	in := time.Date(2025, 3, 10, 23, 30, 0, 0, loc) // 02:30 UTC do dia 11
	got := Midday(in)
	want := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Midday = %v; want %v", got, want)
	}
}
