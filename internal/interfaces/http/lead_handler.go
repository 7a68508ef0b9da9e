package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/application/leads"
	"github.com/jhoicas/leads-api/internal/domain"
)

// LeadHandler maneja las peticiones HTTP de leads.
type LeadHandler struct {
	uc  *leads.UseCase
	err errorWriter
}

// NewLeadHandler construye el handler.
func NewLeadHandler(uc *leads.UseCase, production bool) *LeadHandler {
	return &LeadHandler{uc: uc, err: errorWriter{exposeCause: !production}}
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: cuerpo inválido: %s", domain.ErrInvalidInput, err.Error())
}

// List GET /api/leads?search=&status=&sortBy=&sortOrder=
//
//	@Summary	Listar leads
//	@Tags		leads
//	@Param		search		query	string	false	"texto en name, email, company o phone"
//	@Param		status		query	string	false	"estado exacto"
//	@Param		sortBy		query	string	false	"createdAt | updatedAt | name | company | status | estimatedValue | revenue"
//	@Param		sortOrder	query	string	false	"asc | desc"
//	@Success	200	{array}		dto.LeadResponse
//	@Failure	400	{object}	dto.ErrorResponse
//	@Router		/api/leads [get]
func (h *LeadHandler) List(c *fiber.Ctx) error {
	var q dto.ListLeadsQuery
	if err := c.QueryParser(&q); err != nil {
		return h.err.write(c, invalidBody(err))
	}
	list, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/leads/:id
func (h *LeadHandler) Get(c *fiber.Ctx) error {
	lead, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(lead)
}

// Create POST /api/leads
//
//	@Summary	Crear lead
//	@Tags		leads
//	@Param		body	body		dto.CreateLeadRequest	true	"lead"
//	@Success	201		{object}	dto.LeadResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Router		/api/leads [post]
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return h.err.write(c, invalidBody(err))
	}
	lead, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return h.err.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lead)
}

// Update PUT /api/leads/:id
func (h *LeadHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return h.err.write(c, invalidBody(err))
	}
	lead, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(lead)
}

// Delete DELETE /api/leads/:id
func (h *LeadHandler) Delete(c *fiber.Ctx) error {
	lead, err := h.uc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(dto.DeleteLeadResponse{Message: "Lead deleted successfully", Lead: lead})
}

// BulkUpdateStatus PATCH /api/leads/bulk-status
//
//	@Summary	Cambiar el estado de varios leads
//	@Tags		leads
//	@Param		body	body		dto.BulkStatusRequest	true	"ids y estado"
//	@Success	200		{object}	dto.BulkStatusResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Router		/api/leads/bulk-status [patch]
func (h *LeadHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var in dto.BulkStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return h.err.write(c, invalidBody(err))
	}
	res, err := h.uc.BulkUpdateStatus(c.UserContext(), in)
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(res)
}

// BulkDelete POST /api/leads/bulk-delete
func (h *LeadHandler) BulkDelete(c *fiber.Ctx) error {
	var in dto.BulkDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return h.err.write(c, invalidBody(err))
	}
	res, err := h.uc.BulkDelete(c.UserContext(), in)
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(res)
}
