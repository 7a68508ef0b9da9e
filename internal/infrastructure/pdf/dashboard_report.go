// Package pdf genera el reporte del tablero de leads en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + ventana (desde / hasta) + fecha de emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KPIs: Leads | Contactados | Ventas cerradas | Ingreso       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Estado | Cantidad | %                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Ingreso (un renglón por día de la ventana)   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/application/ports"
)

var _ ports.ReportGenerator = (*DashboardReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorZebra   = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// DashboardReportGenerator implementa ports.ReportGenerator usando Maroto v2.
type DashboardReportGenerator struct {
	appName string
}

// NewDashboardReportGenerator construye el generador; appName va como autor del documento.
func NewDashboardReportGenerator(appName string) *DashboardReportGenerator {
	return &DashboardReportGenerator{appName: appName}
}

// DashboardReport genera el PDF y devuelve sus bytes.
func (g *DashboardReportGenerator) DashboardReport(data *dto.DashboardResponse, generatedAt time.Time) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("pdf: tablero vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte del tablero de leads", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Window, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(data.KPIs))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("Leads por estado"))
	m.AddRows(tableHeader([]string{"Estado", "Cantidad", "%"}, []int{6, 3, 3}))
	m.AddRows(statusRows(data.StatusCounts, data.KPIs.TotalLeads)...)

	m.AddRows(line.NewRow(4))
	m.AddRows(sectionTitle("Ingreso por día"))
	m.AddRows(tableHeader([]string{"Fecha", "Ingreso"}, []int{6, 6}))
	m.AddRows(revenueRows(data.RevenueByDate)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(w dto.DashboardWindow, generatedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New("TABLERO DE LEADS", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Ventana: %s a %s (%d días)", w.From, w.To, w.Days), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func kpiRow(k dto.KPIsDTO) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Center, Top: 8, Color: colorPrimary,
			}),
		)
	}
	return row.New(20).Add(
		cell("Leads", fmt.Sprint(k.TotalLeads)),
		cell("Contactados", fmt.Sprint(k.ContactedLeads)),
		cell("Ventas cerradas", fmt.Sprint(k.SalesClosed)),
		cell("Ingreso total", "$"+formatMoney(k.TotalRevenue)),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(strings.ToUpper(s), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
		}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1.5, Left: 1, Right: 1,
		})))
	}
	return row.New(7).Add(cols...)
}

func statusRows(counts dto.StatusCounts, total int) []core.Row {
	rows := make([]core.Row, 0, len(counts))
	for i, c := range counts {
		pct := "0%"
		if total > 0 {
			pct = decimal.NewFromInt(int64(c.Count * 100)).Div(decimal.NewFromInt(int64(total))).StringFixed(1) + "%"
		}
		r := row.New(6).Add(
			col.New(6).Add(text.New(string(c.Status), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(fmt.Sprint(c.Count), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(pct, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		)
		rows = append(rows, zebra(r, i))
	}
	return rows
}

func revenueRows(series dto.RevenueByDate) []core.Row {
	rows := make([]core.Row, 0, len(series))
	for i, d := range series {
		r := row.New(6).Add(
			col.New(6).Add(text.New(d.Date, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New("$"+formatMoney(d.Revenue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		)
		rows = append(rows, zebra(r, i))
	}
	return rows
}

func zebra(r core.Row, i int) core.Row {
	if i%2 == 1 {
		r.WithStyle(&props.Cell{BackgroundColor: colorZebra})
	}
	return r
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney redondea a entero e inserta puntos de miles.
// Ej: 25000 → "25.000", 1000000.4 → "1.000.000"
func formatMoney(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	n := len(s)
	buf := make([]byte, 0, n+n/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
