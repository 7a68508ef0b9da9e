package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/leads-api/internal/application/analytics"
	"github.com/jhoicas/leads-api/internal/domain/entity"
)

var bogota = time.FixedZone("COT", -5*3600)

// 14:30 hora local del 15 de mayo de 2024.
var now = time.Date(2024, 5, 15, 14, 30, 0, 0, bogota)

func lead(status entity.LeadStatus, revenue int64, createdAt time.Time) *entity.Lead {
	return &entity.Lead{
		Name:      "lead",
		Status:    status,
		Revenue:   decimal.NewFromInt(revenue),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestAggregate_EjemploBasico(t *testing.T) {
	day0 := now.Add(-2 * time.Hour)
	leads := []*entity.Lead{
		lead(entity.LeadStatusConverted, 1200, day0),
		lead(entity.LeadStatusNew, 0, day0),
	}

	res := analytics.Aggregate(leads, 1, now)

	assert.Equal(t, 2, res.KPIs.TotalLeads)
	assert.Equal(t, 0, res.KPIs.ContactedLeads)
	assert.Equal(t, 1, res.KPIs.SalesClosed)
	assert.True(t, res.KPIs.TotalRevenue.Equal(decimal.NewFromInt(1200)))

	assert.Equal(t, 1, res.StatusCounts.Get(entity.LeadStatusNew))
	assert.Equal(t, 1, res.StatusCounts.Get(entity.LeadStatusConverted))
	assert.Equal(t, 0, res.StatusCounts.Get(entity.LeadStatusLost))

	v, ok := res.RevenueByDate.Get("2024-05-15")
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(1200)))

	assert.Equal(t, "2024-05-14", res.Window.From)
	assert.Equal(t, "2024-05-15", res.Window.To)
}

func TestAggregate_SerieCompletaYAscendente(t *testing.T) {
	for _, days := range []int{1, 7, 30, 90, 365} {
		res := analytics.Aggregate(nil, days, now)

		require.Len(t, res.RevenueByDate, days+1, "rango %d", days)
		for i, d := range res.RevenueByDate {
			assert.False(t, d.Revenue.IsNegative())
			if i > 0 {
				assert.Less(t, res.RevenueByDate[i-1].Date, d.Date, "claves ascendentes y distintas")
			}
		}
		assert.Equal(t, "2024-05-15", res.RevenueByDate[days].Date)
	}
}

func TestAggregate_RangoInvalidoUsaSieteDias(t *testing.T) {
	for _, days := range []int{0, -1, -30, analytics.MaxRangeDays + 1, 3000000} {
		res := analytics.Aggregate(nil, days, now)
		assert.Len(t, res.RevenueByDate, analytics.DefaultRangeDays+1)
		assert.Equal(t, analytics.DefaultRangeDays, res.Window.Days)
	}
}

func TestNormalizeRange_Limites(t *testing.T) {
	assert.Equal(t, 1, analytics.NormalizeRange(1))
	assert.Equal(t, analytics.MaxRangeDays, analytics.NormalizeRange(analytics.MaxRangeDays))
	assert.Equal(t, analytics.DefaultRangeDays, analytics.NormalizeRange(analytics.MaxRangeDays+1))

	res := analytics.Aggregate(nil, analytics.MaxRangeDays, now)
	assert.Len(t, res.RevenueByDate, analytics.MaxRangeDays+1)
	assert.Equal(t, "2014-05-18", res.Window.From)
}

func TestAggregate_HistogramaSiempreConSeisEstados(t *testing.T) {
	res := analytics.Aggregate(nil, 7, now)

	require.Len(t, res.StatusCounts, 6)
	for i, s := range entity.AllLeadStatuses() {
		assert.Equal(t, s, res.StatusCounts[i].Status)
		assert.Zero(t, res.StatusCounts[i].Count)
	}
	assert.True(t, res.KPIs.TotalRevenue.IsZero())
}

func TestAggregate_SumasCoinciden(t *testing.T) {
	var leads []*entity.Lead
	statuses := entity.AllLeadStatuses()
	for i := 0; i < 60; i++ {
		created := now.AddDate(0, 0, -(i % 8)).Add(-time.Duration(i) * time.Minute)
		s := statuses[i%len(statuses)]
		var rev int64
		if s == entity.LeadStatusConverted {
			rev = int64(1000 + i*37)
		}
		if s == entity.LeadStatusLost && i%2 == 0 {
			rev = 5000 // ingreso histórico de un lead reclasificado
		}
		leads = append(leads, lead(s, rev, created))
	}

	res := analytics.Aggregate(leads, 7, now)

	assert.Equal(t, res.KPIs.TotalLeads, res.StatusCounts.Total())
	assert.True(t, res.RevenueByDate.Total().Equal(res.KPIs.TotalRevenue),
		"serie=%s kpi=%s", res.RevenueByDate.Total(), res.KPIs.TotalRevenue)
	assert.Equal(t, res.StatusCounts.Get(entity.LeadStatusContacted), res.KPIs.ContactedLeads)
	assert.Equal(t, res.StatusCounts.Get(entity.LeadStatusConverted), res.KPIs.SalesClosed)
}

func TestAggregate_SoloConvertedSumaIngreso(t *testing.T) {
	leads := []*entity.Lead{
		lead(entity.LeadStatusLost, 5000, now),
		lead(entity.LeadStatusConverted, 300, now),
	}

	res := analytics.Aggregate(leads, 7, now)

	assert.True(t, res.KPIs.TotalRevenue.Equal(decimal.NewFromInt(300)))
	v, _ := res.RevenueByDate.Get("2024-05-15")
	assert.True(t, v.Equal(decimal.NewFromInt(300)))
}

func TestAggregate_AgrupaPorDiaLocal(t *testing.T) {
	// 23:30 local del 14 de mayo = 04:30 UTC del 15: debe caer en el 14.
	lateNight := time.Date(2024, 5, 14, 23, 30, 0, 0, bogota).UTC()
	leads := []*entity.Lead{lead(entity.LeadStatusConverted, 800, lateNight)}

	res := analytics.Aggregate(leads, 7, now)

	v14, _ := res.RevenueByDate.Get("2024-05-14")
	v15, _ := res.RevenueByDate.Get("2024-05-15")
	assert.True(t, v14.Equal(decimal.NewFromInt(800)))
	assert.True(t, v15.IsZero())
}

func TestAggregate_FueraDeVentanaNoSeAgrupa(t *testing.T) {
	old := now.AddDate(0, 0, -10)
	leads := []*entity.Lead{lead(entity.LeadStatusConverted, 700, old)}

	res := analytics.Aggregate(leads, 7, now)

	assert.True(t, res.RevenueByDate.Total().IsZero())
	assert.Equal(t, 1, res.KPIs.SalesClosed, "los KPIs cuentan lo que entrega el almacén")
}

func TestWindowStart(t *testing.T) {
	ws := analytics.WindowStart(now, 7)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, bogota), ws)

	assert.Equal(t, analytics.WindowStart(now, 7), analytics.WindowStart(now, 0))
}

func TestWindowStart_CambioDeHorario(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("zona horaria no disponible")
	}
	// El 10 de marzo de 2024 se adelanta el reloj en Nueva York.
	at := time.Date(2024, 3, 12, 9, 0, 0, 0, ny)

	ws := analytics.WindowStart(at, 3)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, ny), ws)

	res := analytics.Aggregate(nil, 3, at)
	require.Len(t, res.RevenueByDate, 4)
	assert.Equal(t, "2024-03-09", res.RevenueByDate[0].Date)
	assert.Equal(t, "2024-03-12", res.RevenueByDate[3].Date)
}
