package dto

import (
	"encoding/json"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
)

// FlexNumber aceita número JSON, string numérica ou null, coagindo pelo mesmo
// limite de coerção do domínio (inválido vira 0).
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = FlexNumber(model.ParseDecimal(s))
	return nil
}

func (f FlexNumber) Float() float64 { return float64(f) }
