package events

import "time"

// Evento publicado no canal Redis Pub/Sub por usuário após qualquer mutação
// no ledger (apostas ou registro do usuário).
type LedgerChanged struct {
	UserID string    `json:"user_id"`
	Table  string    `json:"table"` // "bets" | "users"
	Op     string    `json:"op"`    // "INSERT" | "UPDATE" | "DELETE"
	Ts     time.Time `json:"ts"`
}
