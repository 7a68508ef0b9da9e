package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LeadStatus estado del lead dentro del embudo de ventas. Se persiste como su valor literal.
type LeadStatus string

// Estados del embudo, en orden canónico.
const (
	LeadStatusNew               LeadStatus = "New"
	LeadStatusContacted         LeadStatus = "Contacted"
	LeadStatusFollowUp          LeadStatus = "Follow Up"
	LeadStatusAppointmentBooked LeadStatus = "Appointment Booked"
	LeadStatusConverted         LeadStatus = "Converted"
	LeadStatusLost              LeadStatus = "Lost"
)

var leadStatuses = [...]LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusFollowUp,
	LeadStatusAppointmentBooked,
	LeadStatusConverted,
	LeadStatusLost,
}

// AllLeadStatuses devuelve los 6 estados en orden canónico (copia, se puede modificar).
func AllLeadStatuses() []LeadStatus {
	out := make([]LeadStatus, len(leadStatuses))
	copy(out, leadStatuses[:])
	return out
}

// Valid indica si s pertenece a la enumeración cerrada.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusFollowUp,
		LeadStatusAppointmentBooked, LeadStatusConverted, LeadStatusLost:
		return true
	default:
		return false
	}
}

// Index posición de s en el orden canónico; -1 si no es válido.
func (s LeadStatus) Index() int {
	for i, v := range leadStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

func (s LeadStatus) String() string { return string(s) }

// ParseLeadStatus convierte el literal recibido (ej. "Follow Up") en LeadStatus.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("estado de lead desconocido: %q", raw)
	}
	return s, nil
}

// Lead prospecto comercial seguido a lo largo del embudo.
// Revenue solo lo asigna el motor de reglas de ingreso (domain/revenue).
type Lead struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Company        string
	Notes          string
	Status         LeadStatus
	EstimatedValue decimal.Decimal // pronóstico ingresado por el operador
	Revenue        decimal.Decimal // ingreso realizado
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsConverted indica si el lead está en estado Converted.
func (l *Lead) IsConverted() bool {
	return l != nil && l.Status == LeadStatusConverted
}

// Touch refresca UpdatedAt sin permitir que quede antes de CreatedAt.
func (l *Lead) Touch(now time.Time) {
	if now.Before(l.CreatedAt) {
		now = l.CreatedAt
	}
	l.UpdatedAt = now
}
