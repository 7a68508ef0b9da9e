// Package memory implementa el almacén de leads en memoria (STORE_DRIVER=memory y tests).
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/jhoicas/leads-api/internal/domain"
	"github.com/jhoicas/leads-api/internal/domain/entity"
	"github.com/jhoicas/leads-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepository)(nil)

// LeadRepository almacén en memoria protegido por un RWMutex.
// Guarda y devuelve copias, nunca comparte punteros con el llamador.
type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]entity.Lead
}

// NewLeadRepository crea el almacén, opcionalmente con datos iniciales.
func NewLeadRepository(seed ...*entity.Lead) *LeadRepository {
	r := &LeadRepository{
		leads: make(map[string]entity.Lead, len(seed)),
	}
	for _, l := range seed {
		r.leads[l.ID] = *l
	}
	return r
}

// Find devuelve los leads que cumplen filter ordenados por sort.
func (r *LeadRepository) Find(ctx context.Context, filter repository.LeadFilter, sort repository.LeadSort) ([]*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StoreFailure("find", err)
	}
	if !sort.Field.Valid() {
		sort = repository.DefaultLeadSort
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// cases.Caser tiene estado: uno por llamada.
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(filter.Search))
	out := make([]*entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if filter.CreatedAtGte != nil && l.CreatedAt.Before(*filter.CreatedAtGte) {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if term != "" && !matches(fold, &l, term) {
			continue
		}
		cp := l
		out = append(out, &cp)
	}

	slices.SortFunc(out, func(a, b *entity.Lead) int {
		c := compareBy(sort.Field, a, b)
		if sort.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func matches(fold cases.Caser, l *entity.Lead, term string) bool {
	for _, field := range [...]string{l.Name, l.Email, l.Company, l.Phone} {
		if strings.Contains(fold.String(field), term) {
			return true
		}
	}
	return false
}

func compareBy(field repository.SortField, a, b *entity.Lead) int {
	switch field {
	case repository.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case repository.SortByName:
		return cmp.Compare(a.Name, b.Name)
	case repository.SortByCompany:
		return cmp.Compare(a.Company, b.Company)
	case repository.SortByStatus:
		return cmp.Compare(a.Status, b.Status)
	case repository.SortByEstimatedValue:
		return a.EstimatedValue.Cmp(b.EstimatedValue)
	case repository.SortByRevenue:
		return a.Revenue.Cmp(b.Revenue)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// GetByID busca un lead por id.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

// GetByIDs devuelve los leads existentes en el orden de ids, sin repetir.
func (r *LeadRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Lead, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if l, ok := r.leads[id]; ok {
			out = append(out, &l)
		}
	}
	return out, nil
}

// Create inserta el lead; el id debe venir asignado.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[lead.ID]; ok {
		return domain.StoreFailure("create", domain.ErrDuplicate)
	}
	r.leads[lead.ID] = *lead
	return nil
}

// Update reemplaza el lead existente.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[lead.ID]; !ok {
		return domain.ErrNotFound
	}
	r.leads[lead.ID] = *lead
	return nil
}

// Delete elimina y devuelve el lead.
func (r *LeadRepository) Delete(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.leads, id)
	return &l, nil
}

// UpdateMany reemplaza todos los leads bajo un mismo lock; si alguno no existe no se aplica ninguno.
func (r *LeadRepository) UpdateMany(ctx context.Context, leads []*entity.Lead) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range leads {
		if _, ok := r.leads[l.ID]; !ok {
			return 0, domain.ErrNotFound
		}
	}
	for _, l := range leads {
		r.leads[l.ID] = *l
	}
	return len(leads), nil
}

// DeleteMany elimina los ids existentes y devuelve cuántos borró.
func (r *LeadRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := r.leads[id]; ok {
			delete(r.leads, id)
			n++
		}
	}
	return n, nil
}

// Len cantidad de leads almacenados.
func (r *LeadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}
