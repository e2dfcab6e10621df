package dto

// CreateBetRequest é o payload de criação de aposta.
// Os campos monetários aceitam número ou string numérica (formato do bot).
type CreateBetRequest struct {
	UserID   string     `json:"userId"`
	Match    string     `json:"partida"`
	Market   string     `json:"market"`
	Outcome  string     `json:"resultado"`
	Profit   FlexNumber `json:"lucro_perda"`
	Odds     FlexNumber `json:"odd"`
	Stake    FlexNumber `json:"stake_valor"`
	PlacedAt string     `json:"aposta_data"` // YYYY-MM-DD
}

// UpdateBetRequest é o payload parcial de edição; campos omitidos não mudam.
type UpdateBetRequest struct {
	Match    *string     `json:"partida,omitempty"`
	Market   *string     `json:"market,omitempty"`
	Outcome  *string     `json:"resultado,omitempty"`
	Profit   *FlexNumber `json:"lucro_perda,omitempty"`
	Odds     *FlexNumber `json:"odd,omitempty"`
	Stake    *FlexNumber `json:"stake_valor,omitempty"`
	PlacedAt *string     `json:"aposta_data,omitempty"`
}
