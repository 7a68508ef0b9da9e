// Package revenue implementa la regla de ingreso que se aplica cada vez que se asigna
// el estado de un lead (creación, actualización individual o masiva).
package revenue

import (
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/domain/entity"
)

// Rango del ingreso provisional [PlaceholderMin, PlaceholderMax).
const (
	PlaceholderMin = 1000
	PlaceholderMax = 16000
)

// ValueSource entrega el ingreso provisional cuando un lead se convierte sin valor conocido.
// Es compatibilidad con el comportamiento heredado; los tests inyectan una fuente fija.
type ValueSource interface {
	Placeholder() decimal.Decimal
}

// Change describe la asignación de estado que dispara la regla.
type Change struct {
	Status           entity.LeadStatus
	Revenue          *decimal.Decimal // valor explícito enviado en la misma petición (nil = no enviado)
	EstimatedValue   decimal.Decimal  // valor estimado efectivo tras aplicar el parche
	EstimatedChanged bool             // la petición trae un estimado distinto del almacenado
}

// Apply decide el ingreso resultante. before es nil en la creación.
//
// Orden de la política:
//  1. Estado distinto de Converted: el ingreso no se toca (se conserva el histórico).
//  2. Converted:
//     a. Revenue explícito > 0 → se usa tal cual.
//     b. EstimatedValue > 0 → EstimatedValue. Si el lead ya estaba Converted con
//     ingreso > 0 y el estimado no cambió, el ingreso se conserva.
//     c. Ingreso previo > 0 (conversión anterior) → sin cambios.
//     d. Ingreso provisional de src.
func Apply(before *entity.Lead, change Change, src ValueSource) decimal.Decimal {
	current := decimal.Zero
	if before != nil {
		current = before.Revenue
	}

	if change.Status != entity.LeadStatusConverted {
		return current
	}

	switch {
	case change.Revenue != nil && change.Revenue.IsPositive():
		return *change.Revenue
	case change.EstimatedValue.IsPositive():
		if before.IsConverted() && current.IsPositive() && !change.EstimatedChanged {
			return current
		}
		return change.EstimatedValue
	case current.IsPositive():
		return current
	default:
		return src.Placeholder()
	}
}

// NeedsPlaceholder indica si Apply recurriría a la fuente provisional para este cambio.
func NeedsPlaceholder(before *entity.Lead, change Change) bool {
	if change.Status != entity.LeadStatusConverted {
		return false
	}
	if change.Revenue != nil && change.Revenue.IsPositive() {
		return false
	}
	if change.EstimatedValue.IsPositive() {
		return false
	}
	return before == nil || !before.Revenue.IsPositive()
}

// ── Fuentes ───────────────────────────────────────────────────────────────────

// RandomSource genera enteros uniformes en [PlaceholderMin, PlaceholderMax).
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource construye la fuente; seed fija permite reproducir secuencias.
func NewRandomSource(seed uint64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Placeholder implementa ValueSource.
func (s *RandomSource) Placeholder() decimal.Decimal {
	s.mu.Lock()
	n := s.rng.IntN(PlaceholderMax-PlaceholderMin) + PlaceholderMin
	s.mu.Unlock()
	return decimal.NewFromInt(int64(n))
}

// FixedSource devuelve siempre el mismo valor.
type FixedSource decimal.Decimal

// Placeholder implementa ValueSource.
func (s FixedSource) Placeholder() decimal.Decimal { return decimal.Decimal(s) }

// SequenceSource devuelve los valores en orden y luego repite el último.
type SequenceSource struct {
	mu     sync.Mutex
	values []decimal.Decimal
	next   int
}

// NewSequenceSource construye la fuente con los valores dados (al menos uno).
func NewSequenceSource(values ...decimal.Decimal) *SequenceSource {
	return &SequenceSource{values: values}
}

// Placeholder implementa ValueSource.
func (s *SequenceSource) Placeholder() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return decimal.NewFromInt(PlaceholderMin)
	}
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}
