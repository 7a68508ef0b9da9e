package ports

import (
	"context"
	"time"

	"github.com/jhoicas/leads-api/internal/application/dto"
)

// DashboardCache define el puerto de salida para cachear respuestas del tablero.
// Un fallo de caché nunca debe impedir responder: Get devuelve (nil, false, err)
// y el caso de uso recalcula.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*dto.DashboardResponse, bool, error)
	Set(ctx context.Context, key string, value *dto.DashboardResponse) error
	// Invalidate borra todas las entradas del tablero (se llama tras cada escritura de leads).
	Invalidate(ctx context.Context) error
}

// ReportGenerator genera el reporte PDF del tablero.
type ReportGenerator interface {
	DashboardReport(data *dto.DashboardResponse, generatedAt time.Time) ([]byte, error)
}

// Clock fuente de la hora actual; los tests inyectan una fija.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

// Now implementa Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock hora del sistema en la zona loc (nil = time.Local).
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return ClockFunc(func() time.Time { return time.Now().In(loc) })
}

// MetricsRecorder contadores de negocio; source es create, update o bulk.
type MetricsRecorder interface {
	LeadCreated()
	LeadConverted(source string)
	PlaceholderRevenue(source string)
	DashboardCache(hit bool)
}

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) LeadCreated()              {}
func (NopMetrics) LeadConverted(string)      {}
func (NopMetrics) PlaceholderRevenue(string) {}
func (NopMetrics) DashboardCache(bool)       {}
