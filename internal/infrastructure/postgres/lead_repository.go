package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/leads-api/internal/domain"
	"github.com/jhoicas/leads-api/internal/domain/entity"
	"github.com/jhoicas/leads-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

const leadColumns = `id, name, email, phone, company, notes, status, estimated_value, revenue, created_at, updated_at`

// sortColumns lista blanca campo JSON -> columna; nunca se interpola texto del cliente.
var sortColumns = map[repository.SortField]string{
	repository.SortByCreatedAt:      "created_at",
	repository.SortByUpdatedAt:      "updated_at",
	repository.SortByName:           "name",
	repository.SortByCompany:        "company",
	repository.SortByStatus:         "status",
	repository.SortByEstimatedValue: "estimated_value",
	repository.SortByRevenue:        "revenue",
}

// LeadRepo implementación de LeadRepository sobre PostgreSQL.
// Las escrituras masivas corren en una transacción.
type LeadRepo struct {
	db DB
	tx *TxRunner
}

// NewLeadRepository construye el adaptador con el pool (o un mock compatible).
func NewLeadRepository(db DB) *LeadRepo {
	return &LeadRepo{db: db, tx: NewTxRunner(db)}
}

// buildFind arma el SELECT con filtros parametrizados.
func buildFind(filter repository.LeadFilter, sort repository.LeadSort) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CreatedAtGte != nil {
		where = append(where, "created_at >= "+arg(*filter.CreatedAtGte))
	}
	if filter.Status != nil {
		where = append(where, "status = "+arg(string(*filter.Status)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		p := arg(containsPattern(term))
		where = append(where, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s OR company ILIKE %[1]s OR phone ILIKE %[1]s)", p))
	}

	col, ok := sortColumns[sort.Field]
	if !ok {
		col = sortColumns[repository.DefaultLeadSort.Field]
		sort.Desc = repository.DefaultLeadSort.Desc
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}

	var b strings.Builder
	b.WriteString("SELECT " + leadColumns + " FROM leads")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY " + col + " " + dir + ", id ASC")
	return b.String(), args
}

// Find lista leads con filtros y orden.
func (r *LeadRepo) Find(ctx context.Context, filter repository.LeadFilter, sort repository.LeadSort) ([]*entity.Lead, error) {
	query, args := buildFind(filter, sort)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StoreFailure("find leads", err)
	}
	list, err := collectLeads(rows)
	if err != nil {
		return nil, domain.StoreFailure("find leads", err)
	}
	return list, nil
}

// GetByID obtiene un lead por ID.
func (r *LeadRepo) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StoreFailure("get lead", err)
	}
	return l, nil
}

// GetByIDs obtiene los leads existentes entre ids.
func (r *LeadRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	if len(ids) == 0 {
		return []*entity.Lead{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ANY($1) ORDER BY created_at DESC, id ASC`, ids)
	if err != nil {
		return nil, domain.StoreFailure("get leads", err)
	}
	list, err := collectLeads(rows)
	if err != nil {
		return nil, domain.StoreFailure("get leads", err)
	}
	return list, nil
}

// Create persiste un nuevo lead.
func (r *LeadRepo) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Notes, string(l.Status),
		l.EstimatedValue, l.Revenue, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.StoreFailure("insert lead", domain.ErrDuplicate)
		}
		return domain.StoreFailure("insert lead", err)
	}
	return nil
}

const updateLeadSQL = `
	UPDATE leads SET name = $2, email = $3, phone = $4, company = $5, notes = $6,
		status = $7, estimated_value = $8, revenue = $9, updated_at = $10
	WHERE id = $1`

func updateLead(ctx context.Context, q Querier, l *entity.Lead) error {
	tag, err := q.Exec(ctx, updateLeadSQL,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Notes, string(l.Status),
		l.EstimatedValue, l.Revenue, l.UpdatedAt,
	)
	if err != nil {
		return domain.StoreFailure("update lead", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update actualiza todos los campos mutables del lead.
func (r *LeadRepo) Update(ctx context.Context, l *entity.Lead) error {
	return updateLead(ctx, r.db, l)
}

// Delete elimina un lead y devuelve la fila borrada.
func (r *LeadRepo) Delete(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.db.QueryRow(ctx, `DELETE FROM leads WHERE id = $1 RETURNING `+leadColumns, id)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StoreFailure("delete lead", err)
	}
	return l, nil
}

// UpdateMany actualiza todos los leads en una transacción; si alguno falla no se aplica ninguno.
func (r *LeadRepo) UpdateMany(ctx context.Context, leads []*entity.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	err := r.tx.Run(ctx, func(q Querier) error {
		for _, l := range leads {
			if err := updateLead(ctx, q, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStore) {
			return 0, err
		}
		return 0, domain.StoreFailure("update leads", err)
	}
	return len(leads), nil
}

// DeleteMany elimina los ids existentes en una sola sentencia.
func (r *LeadRepo) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, domain.StoreFailure("delete leads", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var (
		l      entity.Lead
		status string
	)
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Notes, &status,
		&l.EstimatedValue, &l.Revenue, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LeadStatus(status)
	return &l, nil
}

func collectLeads(rows pgx.Rows) ([]*entity.Lead, error) {
	defer rows.Close()
	list := []*entity.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
