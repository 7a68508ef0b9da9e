package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/leads-api/internal/application/analytics"
	"github.com/jhoicas/leads-api/internal/application/dto"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc          *appanalytics.DashboardUseCase
	defaultDays int
	err         errorWriter
}

// NewDashboardHandler construye el handler. defaultDays se usa cuando ni days ni range son válidos.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, defaultDays int, production bool) *DashboardHandler {
	if defaultDays <= 0 {
		defaultDays = appanalytics.DefaultRangeDays
	}
	return &DashboardHandler{uc: uc, defaultDays: defaultDays, err: errorWriter{exposeCause: !production}}
}

// Get GET /api/dashboard?days=7 (o ?range=7)
//
//	@Summary	KPIs, histograma de estados e ingreso por día
//	@Tags		dashboard
//	@Param		days	query		int	false	"días hacia atrás; tiene prioridad sobre range"
//	@Param		range	query		int	false	"alias histórico de days"
//	@Success	200		{object}	dto.DashboardResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	500		{object}	dto.ErrorResponse
//	@Router		/api/dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	days, err := h.days(c)
	if err != nil {
		return h.err.write(c, err)
	}
	res, err := h.uc.Get(c.UserContext(), days)
	if err != nil {
		return h.err.write(c, err)
	}
	return c.JSON(res)
}

// Report GET /api/dashboard/report?days=7 devuelve el tablero en PDF.
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	days, err := h.days(c)
	if err != nil {
		return h.err.write(c, err)
	}
	pdf, err := h.uc.Report(c.UserContext(), days)
	if err != nil {
		return h.err.write(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="dashboard.pdf"`)
	return c.Send(pdf)
}

func (h *DashboardHandler) days(c *fiber.Ctx) (int, error) {
	var q dto.DashboardQuery
	if err := c.QueryParser(&q); err != nil {
		return 0, invalidBody(err)
	}
	return ParseDays(q, h.defaultDays), nil
}

// ParseDays resuelve el rango: days si es válido, si no range, si no def.
// Se acepta un prefijo numérico ("30d" → 30); cero, negativo o mayor que
// appanalytics.MaxRangeDays no es válido.
func ParseDays(q dto.DashboardQuery, def int) int {
	if n, ok := leadingInt(q.Days); ok {
		return n
	}
	if n, ok := leadingInt(q.Range); ok {
		return n
	}
	return def
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 || n > appanalytics.MaxRangeDays {
		return 0, false
	}
	return n, true
}
