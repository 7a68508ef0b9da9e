package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/leads-api/internal/application/analytics"
	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/application/leads"
	"github.com/jhoicas/leads-api/internal/application/ports"
	"github.com/jhoicas/leads-api/internal/domain/entity"
	"github.com/jhoicas/leads-api/internal/domain/repository"
	"github.com/jhoicas/leads-api/internal/domain/revenue"
	"github.com/jhoicas/leads-api/internal/infrastructure/memory"
	"github.com/jhoicas/leads-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/leads-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

type appOpts struct {
	repo       repository.LeadRepository
	secret     string
	production bool
}

func buildApp(t *testing.T, o appOpts) *fiber.App {
	t.Helper()
	if o.repo == nil {
		o.repo = memory.NewLeadRepository(
			&entity.Lead{ID: "l1", Name: "Jane", Company: "Acme", Status: entity.LeadStatusNew,
				EstimatedValue: decimal.NewFromInt(500), CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)},
			&entity.Lead{ID: "l2", Name: "Bob", Status: entity.LeadStatusConverted,
				Revenue: decimal.NewFromInt(1200), CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour)},
		)
	}
	clock := ports.ClockFunc(func() time.Time { return now })

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(o.production)})
	apphttp.Router(app, apphttp.RouterDeps{
		LeadUC: leads.NewUseCase(leads.Deps{
			Repo:   o.repo,
			Values: revenue.FixedSource(decimal.NewFromInt(4242)),
			Clock:  clock,
		}),
		DashboardUC: analytics.NewDashboardUseCase(analytics.DashboardDeps{
			Repo:   o.repo,
			Report: pdf.NewDashboardReportGenerator("leads-api-test"),
			Clock:  clock,
		}),
		JWTSecret:   o.secret,
		DefaultDays: 7,
		Production:  o.production,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Leads
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateLead_201(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPost, "/api/leads", `{"name":"Ana","company":"Globex","estimatedValue":300}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	body := decode(t, raw)
	assert.NotEmpty(t, body["_id"])
	assert.Equal(t, "New", body["status"])
	assert.Equal(t, 300.0, body["estimatedValue"])
	assert.Equal(t, 0.0, body["revenue"])
}

func TestCreateLead_ConvertidoUsaEstimado(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPost, "/api/leads", `{"name":"Ana","status":"Converted","estimatedValue":800}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 800.0, decode(t, raw)["revenue"])
}

func TestCreateLead_SinNombre400(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPost, "/api/leads", `{"company":"Globex"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeValidation, decode(t, raw)["code"])
}

func TestCreateLead_EstadoInvalido400(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, _ := do(t, app, http.MethodPost, "/api/leads", `{"name":"Ana","status":"converted"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateLead_JSONMalformado400(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPost, "/api/leads", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidBody, decode(t, raw)["code"])
}

func TestGetLead_NoExiste404(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodGet, "/api/leads/nope", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, raw)
	assert.Equal(t, apphttp.CodeNotFound, body["code"])
	assert.Equal(t, "Lead not found", body["message"])
}

func TestListLeads_BusquedaYOrden(t *testing.T) {
	app := buildApp(t, appOpts{})

	resp, raw := do(t, app, http.MethodGet, "/api/leads?search=acme", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "l1", list[0]["_id"])

	resp, raw = do(t, app, http.MethodGet, "/api/leads?sortBy=name&sortOrder=asc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0]["name"])

	resp, _ = do(t, app, http.MethodGet, "/api/leads?sortOrder=sideways", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateLead_ConvierteConEstimado(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPut, "/api/leads/l1", `{"status":"Converted"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	body := decode(t, raw)
	assert.Equal(t, "Converted", body["status"])
	assert.Equal(t, 500.0, body["revenue"])
}

func TestDeleteLead_DevuelveMensajeYLead(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodDelete, "/api/leads/l1", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, raw)
	assert.Equal(t, "Lead deleted successfully", body["message"])
	assert.Equal(t, "l1", body["lead"].(map[string]any)["_id"])

	resp, _ = do(t, app, http.MethodDelete, "/api/leads/l1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBulkStatus_ReportaFaltantes(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPatch, "/api/leads/bulk-status", `{"leadIds":["l1","ghost"],"status":"Converted"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	body := decode(t, raw)
	assert.Equal(t, []any{"ghost"}, body["notFound"])
	updated := body["leads"].([]any)
	require.Len(t, updated, 1)
	assert.Equal(t, 500.0, updated[0].(map[string]any)["revenue"])
}

func TestBulkStatus_SinIDs400(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, _ := do(t, app, http.MethodPatch, "/api/leads/bulk-status", `{"leadIds":[],"status":"Lost"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBulkDelete(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodPost, "/api/leads/bulk-delete", `{"leadIds":["l1","l2","x"]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	body := decode(t, raw)
	assert.Equal(t, 2.0, body["deleted"])
	assert.Equal(t, []any{"x"}, body["notFound"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_DaysTienePrioridad(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodGet, "/api/dashboard?days=30&range=7", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, raw)
	assert.Equal(t, 30.0, body["window"].(map[string]any)["days"])
	assert.Len(t, body["revenueByDate"], 31)

	kpis := body["kpis"].(map[string]any)
	assert.Equal(t, 2.0, kpis["totalLeads"])
	assert.Equal(t, 1.0, kpis["salesClosed"])
	assert.Equal(t, 1200.0, kpis["totalRevenue"])
}

func TestDashboard_RangeYDefecto(t *testing.T) {
	app := buildApp(t, appOpts{})

	_, raw := do(t, app, http.MethodGet, "/api/dashboard?days=abc&range=14", "")
	assert.Equal(t, 14.0, decode(t, raw)["window"].(map[string]any)["days"])

	_, raw = do(t, app, http.MethodGet, "/api/dashboard?days=0", "")
	assert.Equal(t, 7.0, decode(t, raw)["window"].(map[string]any)["days"])

	resp, raw := do(t, app, http.MethodGet, "/api/dashboard?days=3000000", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7.0, decode(t, raw)["window"].(map[string]any)["days"])
}

func TestDashboard_StatusCountsEnOrden(t *testing.T) {
	app := buildApp(t, appOpts{})
	_, raw := do(t, app, http.MethodGet, "/api/dashboard", "")

	i := bytes.Index(raw, []byte(`"statusCounts":`))
	require.GreaterOrEqual(t, i, 0)
	assert.True(t, bytes.HasPrefix(raw[i:], []byte(`"statusCounts":{"New":1,"Contacted":0,"Follow Up":0,"Appointment Booked":0,"Converted":1,"Lost":0}`)))
}

func TestDashboardReport_PDF(t *testing.T) {
	app := buildApp(t, appOpts{})
	resp, raw := do(t, app, http.MethodGet, "/api/dashboard/report?range=7", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestParseDays(t *testing.T) {
	cases := []struct {
		days, rng string
		want      int
	}{
		{"", "", 7},
		{"30", "", 30},
		{"30", "14", 30},
		{"", "14", 14},
		{"-3", "14", 14},
		{"x", "y", 7},
		{"30d", "", 30},
		{"0", "0", 7},
		{"3650", "", 3650},
		{"3651", "14", 14},
		{"3000000", "", 7},
		{"99999999999999999999", "30", 30},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, apphttp.ParseDays(dto.DashboardQuery{Days: c.days, Range: c.rng}, 7), "days=%q range=%q", c.days, c.rng)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores del almacén
// ──────────────────────────────────────────────────────────────────────────────

type downRepo struct{ repository.LeadRepository }

func (downRepo) Find(context.Context, repository.LeadFilter, repository.LeadSort) ([]*entity.Lead, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestStoreError_OcultaCausaEnProduccion(t *testing.T) {
	resp, raw := do(t, buildApp(t, appOpts{repo: downRepo{}, production: true}), http.MethodGet, "/api/leads", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, raw)
	assert.Equal(t, apphttp.CodeStore, body["code"])
	assert.NotContains(t, body, "error")

	_, raw = do(t, buildApp(t, appOpts{repo: downRepo{}}), http.MethodGet, "/api/dashboard", "")
	assert.Contains(t, decode(t, raw)["error"], "connection refused")
}

func TestRutaInexistente404(t *testing.T) {
	resp, raw := do(t, buildApp(t, appOpts{}), http.MethodGet, "/api/nada", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, decode(t, raw)["code"])
}

func TestErrorHandler_CodigoHTTPGenerico(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(false)})
	app.Get("/tea", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot) })

	resp, raw := do(t, app, http.MethodGet, "/tea", "")
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "HTTP_I'm a teapot", decode(t, raw)["code"])
}
