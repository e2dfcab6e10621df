package model

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal é a fronteira única de coerção numérica do ledger.
// O armazenamento e o feed do bot serializam valores monetários como texto,
// às vezes com vírgula decimal; valores vazios ou inválidos viram 0 para que
// NaN nunca entre nas somas.
func ParseDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// ParseFloat aceita "NaN" e "Inf"; nenhum dos dois pode entrar nas somas
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 arredonda para 2 casas decimais, regra de todas as saídas monetárias
// e percentuais do dashboard.
func Round2(v float64) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return f
}
