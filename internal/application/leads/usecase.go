// Package leads contiene los casos de uso de escritura y consulta de leads.
// Toda asignación de estado pasa por la regla de ingreso (domain/revenue).
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/application/ports"
	"github.com/jhoicas/leads-api/internal/application/validation"
	"github.com/jhoicas/leads-api/internal/domain"
	"github.com/jhoicas/leads-api/internal/domain/entity"
	"github.com/jhoicas/leads-api/internal/domain/repository"
	"github.com/jhoicas/leads-api/internal/domain/revenue"
	"github.com/jhoicas/leads-api/pkg/logger"
)

// Orígenes de una conversión para las métricas.
const (
	SourceCreate = "create"
	SourceUpdate = "update"
	SourceBulk   = "bulk"
)

// Deps dependencias del caso de uso; solo Repo es obligatoria.
type Deps struct {
	Repo      repository.LeadRepository
	Values    revenue.ValueSource
	Cache     ports.DashboardCache
	Metrics   ports.MetricsRecorder
	Clock     ports.Clock
	Validator *validation.Validator
	Logger    *logger.Logger
}

// UseCase casos de uso de leads.
type UseCase struct {
	repo     repository.LeadRepository
	values   revenue.ValueSource
	cache    ports.DashboardCache
	metrics  ports.MetricsRecorder
	clock    ports.Clock
	validate *validation.Validator
	log      *logger.Logger
}

// NewUseCase construye el caso de uso completando con valores por defecto lo que falte.
func NewUseCase(d Deps) *UseCase {
	uc := &UseCase{
		repo:     d.Repo,
		values:   d.Values,
		cache:    d.Cache,
		metrics:  d.Metrics,
		clock:    d.Clock,
		validate: d.Validator,
		log:      d.Logger,
	}
	if uc.values == nil {
		uc.values = revenue.NewRandomSource(uint64(uuid.New().ID()))
	}
	if uc.metrics == nil {
		uc.metrics = ports.NopMetrics{}
	}
	if uc.clock == nil {
		uc.clock = ports.SystemClock(nil)
	}
	if uc.validate == nil {
		uc.validate = validation.New()
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	return uc
}

// List lista leads con búsqueda, filtro por estado y ordenamiento.
func (uc *UseCase) List(ctx context.Context, in dto.ListLeadsQuery) ([]*dto.LeadResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	sort, err := parseSort(in.SortBy, in.SortOrder)
	if err != nil {
		return nil, err
	}
	filter := repository.LeadFilter{Search: strings.TrimSpace(in.Search)}
	if in.Status != "" {
		st := entity.LeadStatus(in.Status)
		filter.Status = &st
	}

	list, err := uc.repo.Find(ctx, filter, sort)
	if err != nil {
		return nil, uc.storeError("list", err)
	}
	return dto.ToLeadResponses(list), nil
}

func parseSort(sortBy, sortOrder string) (repository.LeadSort, error) {
	sort := repository.DefaultLeadSort
	if sortBy != "" {
		sort.Field = repository.SortField(sortBy)
		if !sort.Field.Valid() {
			return sort, domain.Validation(fmt.Sprintf("sortBy: campo no ordenable %q", sortBy))
		}
	}
	switch strings.ToLower(sortOrder) {
	case "", "desc":
		sort.Desc = true
	case "asc":
		sort.Desc = false
	default:
		return sort, domain.Validation(fmt.Sprintf("sortOrder: se espera asc o desc, llegó %q", sortOrder))
	}
	return sort, nil
}

// Get obtiene un lead por id.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.LeadResponse, error) {
	lead, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.storeError("get", err)
	}
	return dto.ToLeadResponse(lead), nil
}

// Create crea un lead. Si llega con status Converted se aplica la regla de ingreso.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("name: es obligatorio")
	}

	status := entity.LeadStatusNew
	if in.Status != "" {
		status = entity.LeadStatus(in.Status)
	}
	estimated := decimal.Zero
	if in.EstimatedValue != nil {
		estimated = *in.EstimatedValue
	}

	now := uc.clock.Now()
	lead := &entity.Lead{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Company:        strings.TrimSpace(in.Company),
		Notes:          in.Notes,
		Status:         status,
		EstimatedValue: estimated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	change := revenue.Change{Status: status, Revenue: in.Revenue, EstimatedValue: estimated}
	placeholder := revenue.NeedsPlaceholder(nil, change)
	lead.Revenue = revenue.Apply(nil, change, uc.values)

	if err := uc.repo.Create(ctx, lead); err != nil {
		return nil, uc.storeError("create", err)
	}

	uc.metrics.LeadCreated()
	if lead.IsConverted() {
		uc.metrics.LeadConverted(SourceCreate)
	}
	if placeholder {
		uc.metrics.PlaceholderRevenue(SourceCreate)
	}
	uc.log.Info().Str("lead_id", lead.ID).Str("status", string(lead.Status)).Msg("lead creado")
	uc.invalidate(ctx)
	return dto.ToLeadResponse(lead), nil
}

// Update aplica un parche por campos. La regla de ingreso corre cuando se envía status,
// o cuando se envía revenue para un lead que queda Converted.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validation("name: no puede quedar vacío")
	}
	if in.Status != nil && !entity.LeadStatus(*in.Status).Valid() {
		return nil, domain.Validation(fmt.Sprintf("status: estado inválido %q", *in.Status))
	}

	before, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.storeError("update", err)
	}
	after := *before
	applyPatch(&after, in)

	placeholder := false
	if in.Status != nil || (in.Revenue != nil && after.IsConverted()) {
		change := revenue.Change{
			Status:           after.Status,
			Revenue:          in.Revenue,
			EstimatedValue:   after.EstimatedValue,
			EstimatedChanged: !after.EstimatedValue.Equal(before.EstimatedValue),
		}
		placeholder = revenue.NeedsPlaceholder(before, change)
		after.Revenue = revenue.Apply(before, change, uc.values)
	}
	after.Touch(uc.clock.Now())

	if err := uc.repo.Update(ctx, &after); err != nil {
		return nil, uc.storeError("update", err)
	}

	if after.IsConverted() && !before.IsConverted() {
		uc.metrics.LeadConverted(SourceUpdate)
	}
	if placeholder {
		uc.metrics.PlaceholderRevenue(SourceUpdate)
	}
	uc.invalidate(ctx)
	return dto.ToLeadResponse(&after), nil
}

func applyPatch(l *entity.Lead, in dto.UpdateLeadRequest) {
	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		l.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		l.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Company != nil {
		l.Company = strings.TrimSpace(*in.Company)
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
	if in.Status != nil {
		l.Status = entity.LeadStatus(*in.Status)
	}
	if in.EstimatedValue != nil {
		l.EstimatedValue = *in.EstimatedValue
	}
}

// Delete elimina un lead y lo devuelve.
func (uc *UseCase) Delete(ctx context.Context, id string) (*dto.LeadResponse, error) {
	lead, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return nil, uc.storeError("delete", err)
	}
	uc.log.Info().Str("lead_id", id).Msg("lead eliminado")
	uc.invalidate(ctx)
	return dto.ToLeadResponse(lead), nil
}

// BulkUpdateStatus asigna status a todos los ids existentes en una sola escritura atómica.
// La regla de ingreso se evalúa por lead con sus propios valores.
func (uc *UseCase) BulkUpdateStatus(ctx context.Context, in dto.BulkStatusRequest) (*dto.BulkStatusResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	ids := uniqueIDs(in.LeadIDs)
	if len(ids) == 0 {
		return nil, domain.Validation("leadIds: es obligatorio")
	}
	status := entity.LeadStatus(in.Status)

	found, err := uc.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, uc.storeError("bulk-status", err)
	}

	now := uc.clock.Now()
	updated := make([]*entity.Lead, 0, len(found))
	converted, placeholders := 0, 0
	for _, before := range found {
		after := *before
		after.Status = status
		change := revenue.Change{Status: status, EstimatedValue: before.EstimatedValue}
		if revenue.NeedsPlaceholder(before, change) {
			placeholders++
		}
		after.Revenue = revenue.Apply(before, change, uc.values)
		after.Touch(now)
		if after.IsConverted() && !before.IsConverted() {
			converted++
		}
		updated = append(updated, &after)
	}

	if len(updated) > 0 {
		if _, err := uc.repo.UpdateMany(ctx, updated); err != nil {
			return nil, uc.storeError("bulk-status", err)
		}
		for i := 0; i < converted; i++ {
			uc.metrics.LeadConverted(SourceBulk)
		}
		for i := 0; i < placeholders; i++ {
			uc.metrics.PlaceholderRevenue(SourceBulk)
		}
		uc.invalidate(ctx)
	}

	missing := notFound(ids, found)
	uc.log.Info().Int("updated", len(updated)).Int("not_found", len(missing)).
		Str("status", string(status)).Msg("actualización masiva de estado")

	return &dto.BulkStatusResponse{
		Message:  fmt.Sprintf("%d lead(s) actualizados", len(updated)),
		Leads:    dto.ToLeadResponses(updated),
		NotFound: missing,
	}, nil
}

// BulkDelete elimina los ids existentes en una sola operación atómica.
func (uc *UseCase) BulkDelete(ctx context.Context, in dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	ids := uniqueIDs(in.LeadIDs)
	if len(ids) == 0 {
		return nil, domain.Validation("leadIds: es obligatorio")
	}

	found, err := uc.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, uc.storeError("bulk-delete", err)
	}
	existing := make([]string, 0, len(found))
	for _, l := range found {
		existing = append(existing, l.ID)
	}

	deleted := 0
	if len(existing) > 0 {
		deleted, err = uc.repo.DeleteMany(ctx, existing)
		if err != nil {
			return nil, uc.storeError("bulk-delete", err)
		}
		uc.invalidate(ctx)
	}

	return &dto.BulkDeleteResponse{
		Message:  fmt.Sprintf("%d lead(s) eliminados", deleted),
		Deleted:  deleted,
		NotFound: notFound(ids, found),
	}, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func notFound(ids []string, found []*entity.Lead) []string {
	have := make(map[string]bool, len(found))
	for _, l := range found {
		have[l.ID] = true
	}
	out := []string{}
	for _, id := range ids {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}

// storeError registra los fallos del almacén y deja pasar los errores de dominio.
func (uc *UseCase) storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if !errors.Is(err, domain.ErrStore) {
		err = domain.StoreFailure(op, err)
	}
	uc.log.Error().Err(err).Str("op", op).Msg("fallo del almacén de leads")
	return err
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché del tablero")
	}
}
