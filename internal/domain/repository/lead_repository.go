package repository

import (
	"context"
	"time"

	"github.com/jhoicas/leads-api/internal/domain/entity"
)

// SortField campo por el que se ordena el listado de leads.
type SortField string

// Campos de ordenamiento admitidos (nombres del formato JSON).
const (
	SortByCreatedAt      SortField = "createdAt"
	SortByUpdatedAt      SortField = "updatedAt"
	SortByName           SortField = "name"
	SortByCompany        SortField = "company"
	SortByStatus         SortField = "status"
	SortByEstimatedValue SortField = "estimatedValue"
	SortByRevenue        SortField = "revenue"
)

// Valid indica si el campo es ordenable.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByName, SortByCompany,
		SortByStatus, SortByEstimatedValue, SortByRevenue:
		return true
	default:
		return false
	}
}

// LeadFilter criterios de búsqueda; los campos nil o vacíos no filtran.
type LeadFilter struct {
	CreatedAtGte *time.Time
	Search       string             // subcadena sin distinguir mayúsculas en name/email/company/phone
	Status       *entity.LeadStatus // igualdad
}

// LeadSort ordenamiento del resultado.
type LeadSort struct {
	Field SortField
	Desc  bool
}

// DefaultLeadSort más recientes primero.
var DefaultLeadSort = LeadSort{Field: SortByCreatedAt, Desc: true}

// LeadRepository define el puerto de persistencia para Lead.
// GetByID, Update y Delete devuelven domain.ErrNotFound si el id no existe;
// los fallos de la infraestructura se envuelven con domain.ErrStore.
type LeadRepository interface {
	Find(ctx context.Context, filter LeadFilter, sort LeadSort) ([]*entity.Lead, error)
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	// GetByIDs devuelve los leads existentes; los ids desconocidos se omiten.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id string) (*entity.Lead, error)
	// UpdateMany persiste todos los leads en una sola operación atómica.
	UpdateMany(ctx context.Context, leads []*entity.Lead) (int, error)
	// DeleteMany elimina los ids existentes en una sola operación atómica.
	DeleteMany(ctx context.Context, ids []string) (int, error)
}
