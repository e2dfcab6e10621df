package topics

const (
	// Apostas vindas da integração do bot de mensagens
	BetEvents = "bet_events"

	// DLQ
	BetEventsDLQ = "bet_events_dlq"
)
