package domain

import (
	"bytes"
	"math"
	"strconv"
)

// UnboundedSentinel é o valor legado usado na exportação para medidas "nunca atingidas"
const UnboundedSentinel = 999.0

// Measure representa uma grandeza que pode ser finita ou ilimitada (nunca atingida).
// O valor zero de Measure é Finite(0).
type Measure struct {
	value     float64
	unbounded bool
}

// Finite cria uma medida finita. NaN e Inf viram ilimitadas para nunca vazarem para a saída.
func Finite(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unbounded()
	}
	return Measure{value: v}
}

// Unbounded cria uma medida ilimitada
func Unbounded() Measure {
	return Measure{unbounded: true}
}

// IsUnbounded informa se a medida nunca é atingida
func (m Measure) IsUnbounded() bool {
	return m.unbounded
}

// Value retorna o valor e se ele é finito
func (m Measure) Value() (float64, bool) {
	return m.value, !m.unbounded
}

// OrSentinel retorna o valor finito ou o sentinela 999
func (m Measure) OrSentinel() float64 {
	if m.unbounded {
		return UnboundedSentinel
	}
	return m.value
}

// Less ordena medidas finitas antes das ilimitadas
func (m Measure) Less(other Measure) bool {
	switch {
	case m.unbounded:
		return false
	case other.unbounded:
		return true
	default:
		return m.value < other.value
	}
}

// MeasureFromSentinel interpreta valores >= 999 como ilimitados (leitura de exportações)
func MeasureFromSentinel(v float64) Measure {
	if v >= UnboundedSentinel {
		return Unbounded()
	}
	return Finite(v)
}

// MarshalJSON serializa medidas ilimitadas como null
func (m Measure) MarshalJSON() ([]byte, error) {
	if m.unbounded {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(m.value, 'f', -1, 64)), nil
}

// UnmarshalJSON lê null como ilimitada e números como medida finita
func (m *Measure) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Unbounded()
		return nil
	}

	v, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
	if err != nil {
		return err
	}

	*m = Finite(v)
	return nil
}
