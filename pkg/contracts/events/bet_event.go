package events

// Evento publicado pela integração do bot de mensagens no tópico "bet_events".
// Os campos monetários chegam como string (mesmo formato que o bot grava no
// banco) e são coagidos para número no consumidor.
type BetEvent struct {
	EventID   string `json:"event_id"` // id do evento no bot, usado como chave de idempotência
	UserID    string `json:"user_id"`
	Match     string `json:"partida"`
	Market    string `json:"market"`
	Outcome   string `json:"resultado"` // GREEN | RED | PENDING | VOID | CASHOUT
	ProfitStr string `json:"lucro_perda,omitempty"`
	OddsStr   string `json:"odd"`
	StakeStr  string `json:"stake_valor"`
	PlacedAt  string `json:"aposta_data"` // ISO date (YYYY-MM-DD)
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
