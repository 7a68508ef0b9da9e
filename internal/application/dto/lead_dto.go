package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/domain/entity"
)

// CreateLeadRequest body para POST /api/leads.
// Los campos omitidos toman su valor por defecto (status New, textos vacíos, montos en 0).
type CreateLeadRequest struct {
	Name           string           `json:"name" validate:"required"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Company        string           `json:"company"`
	Status         string           `json:"status" validate:"omitempty,lead_status"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue" validate:"omitempty,gte=0"`
	Revenue        *decimal.Decimal `json:"revenue" validate:"omitempty,gte=0"` // solo se considera si status es Converted
	Notes          string           `json:"notes"`
}

// UpdateLeadRequest body para PUT /api/leads/:id. nil = campo sin cambios.
type UpdateLeadRequest struct {
	Name           *string          `json:"name"` // si se envía no puede quedar vacío
	Email          *string          `json:"email"`
	Phone          *string          `json:"phone"`
	Company        *string          `json:"company"`
	Status         *string          `json:"status" validate:"omitempty,lead_status"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue" validate:"omitempty,gte=0"`
	Revenue        *decimal.Decimal `json:"revenue" validate:"omitempty,gte=0"`
	Notes          *string          `json:"notes"`
}

// ListLeadsQuery parámetros de GET /api/leads.
type ListLeadsQuery struct {
	Search    string `query:"search"`
	Status    string `query:"status" validate:"omitempty,lead_status"`
	SortBy    string `query:"sortBy"`    // createdAt (default), updatedAt, name, company, status, estimatedValue, revenue
	SortOrder string `query:"sortOrder"` // asc | desc (default)
}

// BulkStatusRequest body para PATCH /api/leads/bulk-status.
type BulkStatusRequest struct {
	LeadIDs []string `json:"leadIds" validate:"required,min=1,dive,required"`
	Status  string   `json:"status" validate:"required,lead_status"`
}

// BulkDeleteRequest body para POST /api/leads/bulk-delete.
type BulkDeleteRequest struct {
	LeadIDs []string `json:"leadIds" validate:"required,min=1,dive,required"`
}

// LeadResponse representación JSON de un lead.
type LeadResponse struct {
	ID             string          `json:"_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Company        string          `json:"company"`
	Status         string          `json:"status"`
	EstimatedValue decimal.Decimal `json:"estimatedValue"`
	Revenue        decimal.Decimal `json:"revenue"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// DeleteLeadResponse respuesta de DELETE /api/leads/:id.
type DeleteLeadResponse struct {
	Message string        `json:"message"`
	Lead    *LeadResponse `json:"lead"`
}

// BulkStatusResponse respuesta de la actualización masiva de estado.
type BulkStatusResponse struct {
	Message  string          `json:"message"`
	Leads    []*LeadResponse `json:"leads"`
	NotFound []string        `json:"notFound"`
}

// BulkDeleteResponse respuesta de la eliminación masiva.
type BulkDeleteResponse struct {
	Message  string   `json:"message"`
	Deleted  int      `json:"deleted"`
	NotFound []string `json:"notFound"`
}

// ToLeadResponse mapea la entidad al DTO de salida.
func ToLeadResponse(l *entity.Lead) *LeadResponse {
	if l == nil {
		return nil
	}
	return &LeadResponse{
		ID:             l.ID,
		Name:           l.Name,
		Email:          l.Email,
		Phone:          l.Phone,
		Company:        l.Company,
		Status:         string(l.Status),
		EstimatedValue: l.EstimatedValue,
		Revenue:        l.Revenue,
		Notes:          l.Notes,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// ToLeadResponses mapea una lista; nunca devuelve nil para que el JSON sea [].
func ToLeadResponses(leads []*entity.Lead) []*LeadResponse {
	out := make([]*LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}
