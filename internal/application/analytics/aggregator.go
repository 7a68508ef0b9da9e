// Package analytics contiene la agregación del tablero de leads: KPIs, histograma
// de estados y serie diaria de ingresos con los días sin conversiones rellenados en 0.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/domain/entity"
)

// DefaultRangeDays ventana usada cuando el rango pedido no es válido.
const DefaultRangeDays = 7

// MaxRangeDays mayor ventana aceptada (unos diez años).
const MaxRangeDays = 3650

// DayLayout formato de las claves de revenueByDate.
const DayLayout = "2006-01-02"

// NormalizeRange devuelve rangeDays, o DefaultRangeDays si no es positivo o supera MaxRangeDays.
func NormalizeRange(rangeDays int) int {
	if rangeDays <= 0 || rangeDays > MaxRangeDays {
		return DefaultRangeDays
	}
	return rangeDays
}

// startOfDay 00:00 del día local de t (zona de t).
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WindowStart inicio de la ventana: 00:00 local de (hoy - rangeDays).
// Es el createdAtGte con el que se consulta el almacén.
func WindowStart(now time.Time, rangeDays int) time.Time {
	return startOfDay(now).AddDate(0, 0, -NormalizeRange(rangeDays))
}

// Aggregate calcula el tablero sobre leads, que ya vienen filtrados por createdAt >= WindowStart.
//
// La ventana son días calendario en la zona de now, con ambos extremos incluidos:
// [hoy - rangeDays, hoy], es decir rangeDays+1 entradas en RevenueByDate.
// Los KPIs y el histograma cuentan todos los leads recibidos; la serie solo
// acumula los Converted cuyo día local de creación cae dentro de la ventana.
func Aggregate(leads []*entity.Lead, rangeDays int, now time.Time) *dto.DashboardResponse {
	rangeDays = NormalizeRange(rangeDays)
	today := startOfDay(now)
	start := today.AddDate(0, 0, -rangeDays)

	statuses := entity.AllLeadStatuses()
	counts := make([]int, len(statuses))

	series := make(dto.RevenueByDate, 0, rangeDays+1)
	index := make(map[string]int, rangeDays+1)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(DayLayout)
		index[key] = len(series)
		series = append(series, dto.DailyRevenue{Date: key, Revenue: decimal.Zero})
	}

	kpis := dto.KPIsDTO{TotalRevenue: decimal.Zero}
	for _, l := range leads {
		if l == nil {
			continue
		}
		kpis.TotalLeads++
		if i := l.Status.Index(); i >= 0 {
			counts[i]++
		}

		switch l.Status {
		case entity.LeadStatusContacted:
			kpis.ContactedLeads++
		case entity.LeadStatusConverted:
			kpis.SalesClosed++
			kpis.TotalRevenue = kpis.TotalRevenue.Add(l.Revenue)
			key := l.CreatedAt.In(now.Location()).Format(DayLayout)
			if i, ok := index[key]; ok {
				series[i].Revenue = series[i].Revenue.Add(l.Revenue)
			}
		}
	}

	statusCounts := make(dto.StatusCounts, len(statuses))
	for i, s := range statuses {
		statusCounts[i] = dto.StatusCount{Status: s, Count: counts[i]}
	}

	return &dto.DashboardResponse{
		KPIs:          kpis,
		StatusCounts:  statusCounts,
		RevenueByDate: series,
		Window: dto.DashboardWindow{
			Days: rangeDays,
			From: start.Format(DayLayout),
			To:   today.Format(DayLayout),
		},
	}
}
