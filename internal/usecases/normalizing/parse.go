package normalizing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotANumber = errors.New("valor numérico inválido")

var numberCleaner = strings.NewReplacer("€", "", "EUR", "", "eur", "", "%", "", " ", "", "\u00a0", "", "'", "")

// parseNumber aceita símbolos de moeda/percentual e vírgula decimal.
// Quando ',' e '.' aparecem juntos, o separador mais à direita é o decimal.
func parseNumber(raw string) (float64, error) {
	s := numberCleaner.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, errNotANumber
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotANumber
	}

	return v, nil
}

// parseCount aceita apenas números inteiros (ex: "12" ou "12,0")
func parseCount(raw string) (int, error) {
	v, err := parseNumber(raw)
	if err != nil {
		return 0, err
	}

	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, errNotANumber
	}

	return int(v), nil
}
