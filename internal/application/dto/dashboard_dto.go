package dto

import (
	"fmt"

	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jhoicas/leads-api/internal/domain/entity"
)

// DashboardQuery parámetros de GET /api/dashboard. "days" tiene prioridad sobre "range".
type DashboardQuery struct {
	Days  string `query:"days"`
	Range string `query:"range"`
}

// DashboardResponse respuesta de GET /api/dashboard.
type DashboardResponse struct {
	KPIs          KPIsDTO         `json:"kpis"`
	StatusCounts  StatusCounts    `json:"statusCounts"`
	RevenueByDate RevenueByDate   `json:"revenueByDate"`
	Window        DashboardWindow `json:"window"`
}

// KPIsDTO los cuatro contadores resumen del tablero.
type KPIsDTO struct {
	TotalLeads     int             `json:"totalLeads"`
	ContactedLeads int             `json:"contactedLeads"`
	SalesClosed    int             `json:"salesClosed"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"` // suma del revenue de los leads Converted
}

// DashboardWindow días locales cubiertos, ambos extremos incluidos (YYYY-MM-DD).
type DashboardWindow struct {
	Days int    `json:"days"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ── Histograma de estados ─────────────────────────────────────────────────────

// StatusCount cantidad de leads en un estado.
type StatusCount struct {
	Status entity.LeadStatus
	Count  int
}

// StatusCounts histograma en orden canónico; se serializa como objeto {"New": 3, ...}
// conservando ese orden de claves.
type StatusCounts []StatusCount

// Get devuelve la cantidad para status (0 si no está).
func (s StatusCounts) Get(status entity.LeadStatus) int {
	for _, c := range s {
		if c.Status == status {
			return c.Count
		}
	}
	return 0
}

// Total suma de todas las cantidades.
func (s StatusCounts) Total() int {
	n := 0
	for _, c := range s {
		n += c.Count
	}
	return n
}

// MarshalJSON implementa json.Marshaler.
func (s StatusCounts) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, int](len(s))
	for _, c := range s {
		om.Set(string(c.Status), c.Count)
	}
	return om.MarshalJSON()
}

// UnmarshalJSON implementa json.Unmarshaler respetando el orden del documento.
func (s *StatusCounts) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, int]()
	if err := om.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("statusCounts: %w", err)
	}
	out := make(StatusCounts, 0, om.Len())
	for p := om.Oldest(); p != nil; p = p.Next() {
		out = append(out, StatusCount{Status: entity.LeadStatus(p.Key), Count: p.Value})
	}
	*s = out
	return nil
}

// ── Serie de ingresos ─────────────────────────────────────────────────────────

// DailyRevenue ingreso convertido de un día local (YYYY-MM-DD).
type DailyRevenue struct {
	Date    string
	Revenue decimal.Decimal
}

// RevenueByDate serie diaria en orden ascendente; se serializa como objeto
// {"2024-05-01": 0, "2024-05-02": 1200} conservando el orden.
type RevenueByDate []DailyRevenue

// Get devuelve el ingreso del día y si el día pertenece a la serie.
func (r RevenueByDate) Get(date string) (decimal.Decimal, bool) {
	for _, d := range r {
		if d.Date == date {
			return d.Revenue, true
		}
	}
	return decimal.Zero, false
}

// Total suma de la serie.
func (r RevenueByDate) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range r {
		sum = sum.Add(d.Revenue)
	}
	return sum
}

// MarshalJSON implementa json.Marshaler; los montos se escriben como números.
func (r RevenueByDate) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, decimal.Decimal](len(r))
	for _, d := range r {
		om.Set(d.Date, d.Revenue)
	}
	return om.MarshalJSON()
}

// UnmarshalJSON implementa json.Unmarshaler; acepta montos como número o cadena.
func (r *RevenueByDate) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, decimal.Decimal]()
	if err := om.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("revenueByDate: %w", err)
	}
	out := make(RevenueByDate, 0, om.Len())
	for p := om.Oldest(); p != nil; p = p.Next() {
		out = append(out, DailyRevenue{Date: p.Key, Revenue: p.Value})
	}
	*r = out
	return nil
}
