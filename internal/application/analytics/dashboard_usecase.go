package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/application/ports"
	"github.com/jhoicas/leads-api/internal/domain"
	"github.com/jhoicas/leads-api/internal/domain/repository"
	"github.com/jhoicas/leads-api/pkg/logger"
)

// DashboardDeps dependencias del tablero; solo Repo es obligatoria.
type DashboardDeps struct {
	Repo    repository.LeadRepository
	Cache   ports.DashboardCache
	Report  ports.ReportGenerator
	Metrics ports.MetricsRecorder
	Clock   ports.Clock
	Logger  *logger.Logger
}

// DashboardUseCase arma el tablero de leads para la ventana pedida.
//
// Flujo: reloj → caché (si hay) → LeadRepository.Find(createdAt >= WindowStart) → Aggregate.
// La caché es opcional y sus fallos solo se registran.
type DashboardUseCase struct {
	repo    repository.LeadRepository
	cache   ports.DashboardCache
	report  ports.ReportGenerator
	metrics ports.MetricsRecorder
	clock   ports.Clock
	log     *logger.Logger
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(d DashboardDeps) *DashboardUseCase {
	uc := &DashboardUseCase{
		repo:    d.Repo,
		cache:   d.Cache,
		report:  d.Report,
		metrics: d.Metrics,
		clock:   d.Clock,
		log:     d.Logger,
	}
	if uc.metrics == nil {
		uc.metrics = ports.NopMetrics{}
	}
	if uc.clock == nil {
		uc.clock = ports.SystemClock(nil)
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	return uc
}

// CacheKey clave de caché: el día local de hoy y el rango, ej. "2024-05-15:7".
// Al cambiar de día la clave cambia y la ventana se recalcula.
func CacheKey(day string, rangeDays int) string {
	return day + ":" + strconv.Itoa(rangeDays)
}

// Get devuelve KPIs, histograma de estados y serie diaria de ingresos.
// rangeDays no positivo usa DefaultRangeDays.
func (uc *DashboardUseCase) Get(ctx context.Context, rangeDays int) (*dto.DashboardResponse, error) {
	days := NormalizeRange(rangeDays)
	now := uc.clock.Now()
	key := CacheKey(now.Format(DayLayout), days)

	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, key)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("key", key).Msg("caché del tablero no disponible")
		case ok:
			uc.metrics.DashboardCache(true)
			return cached, nil
		default:
			uc.metrics.DashboardCache(false)
		}
	}

	since := WindowStart(now, days)
	leads, err := uc.repo.Find(ctx, repository.LeadFilter{CreatedAtGte: &since}, repository.DefaultLeadSort)
	if err != nil {
		if !errors.Is(err, domain.ErrStore) {
			err = domain.StoreFailure("dashboard", err)
		}
		uc.log.Error().Err(err).Int("days", days).Msg("dashboard: no se pudieron consultar los leads")
		return nil, fmt.Errorf("dashboard: consultar leads: %w", err)
	}

	res := Aggregate(leads, days, now)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, res); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el tablero en caché")
		}
	}
	return res, nil
}

// Report genera el PDF del tablero para la ventana pedida.
func (uc *DashboardUseCase) Report(ctx context.Context, rangeDays int) ([]byte, error) {
	if uc.report == nil {
		return nil, errors.New("dashboard: generador de reportes no configurado")
	}
	data, err := uc.Get(ctx, rangeDays)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.report.DashboardReport(data, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("dashboard: generar reporte: %w", err)
	}
	return pdf, nil
}
