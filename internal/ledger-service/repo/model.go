package repo

// betRow é a linha da tabela bets como persistida: os campos monetários são
// texto (formato herdado da origem) e passam por model.ParseDecimal no scan.
type betRow struct {
	ID        string
	UserID    string
	Match     string
	Market    string
	Outcome   string
	Profit    string
	Odds      string
	Stake     string
	PlacedAt  string // aposta_data ISO
	CreatedAt string
}

// BetInput são os campos aceitos na criação de uma aposta.
type BetInput struct {
	UserID   string
	Match    string
	Market   string
	Outcome  string
	Profit   *float64 // quando nil, derivado do resultado
	Odds     float64
	Stake    float64
	PlacedAt string // YYYY-MM-DD
}

// BetPatch são os campos editáveis de uma aposta; nil significa "não alterar".
type BetPatch struct {
	Match    *string
	Market   *string
	Outcome  *string
	Profit   *float64
	Odds     *float64
	Stake    *float64
	PlacedAt *string // YYYY-MM-DD
}
