// seed puebla el almacén de leads con datos de demostración.
//
// Uso: go run ./cmd/seed [-n 150] [-reset] [-token]
// Toma la conexión de las mismas variables que la API (DATABASE_URL, DB_*).
// -token imprime además un JWT de desarrollo firmado con JWT_SECRET.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/domain/entity"
	"github.com/jhoicas/leads-api/internal/domain/repository"
	"github.com/jhoicas/leads-api/internal/infrastructure/postgres"
	"github.com/jhoicas/leads-api/pkg/config"
	"github.com/jhoicas/leads-api/pkg/jwt"
)

// distribución acumulada de estados: 25/20/15/15/15/10 %
var statusWeights = []struct {
	upTo   float64
	status entity.LeadStatus
}{
	{0.25, entity.LeadStatusNew},
	{0.45, entity.LeadStatusContacted},
	{0.60, entity.LeadStatusFollowUp},
	{0.75, entity.LeadStatusAppointmentBooked},
	{0.90, entity.LeadStatusConverted},
	{1.00, entity.LeadStatusLost},
}

func main() {
	n := flag.Int("n", 150, "cantidad de leads a generar")
	reset := flag.Bool("reset", false, "eliminar los leads existentes antes de insertar")
	token := flag.Bool("token", false, "imprimir un JWT de desarrollo")
	seed := flag.Int64("seed", 0, "semilla del generador (0 = aleatoria)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			fail("migraciones", err)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL", err)
	}
	defer pool.Close()
	repo := postgres.NewLeadRepository(pool)

	if *reset {
		removed, err := clearLeads(ctx, repo)
		if err != nil {
			fail("limpiar leads", err)
		}
		fmt.Printf("🗑  %d leads eliminados\n", removed)
	}

	leads := generate(gofakeit.New(*seed), *n, time.Now().In(cfg.App.Location()))
	for _, l := range leads {
		if err := repo.Create(ctx, l); err != nil {
			fail("insertar lead", err)
		}
	}

	fmt.Printf("✅ %d leads insertados\n", len(leads))
	fmt.Println("📊 Distribución:")
	counts := countByStatus(leads)
	for _, s := range entity.AllLeadStatuses() {
		fmt.Printf("   %-20s %d\n", s, counts[s])
	}

	if *token {
		tok, err := jwt.Generate(cfg.JWT.Secret, uuid.NewString(), "demo@leads.local", cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			fail("generar token", err)
		}
		fmt.Println("🔑 Bearer " + tok)
	}
}

func fail(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	os.Exit(1)
}

func clearLeads(ctx context.Context, repo repository.LeadRepository) (int, error) {
	all, err := repo.Find(ctx, repository.LeadFilter{}, repository.DefaultLeadSort)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(all))
	for _, l := range all {
		ids = append(ids, l.ID)
	}
	return repo.DeleteMany(ctx, ids)
}

// generate crea n leads repartidos en los últimos 30 días, con más peso en los días recientes.
func generate(f *gofakeit.Faker, n int, now time.Time) []*entity.Lead {
	leads := make([]*entity.Lead, 0, n)
	for i := 0; i < n; i++ {
		status := pickStatus(f.Float64Range(0, 1))

		daysAgo := min(int(f.Float64Range(0, 1)*f.Float64Range(0, 1)*30), 29)
		day := now.AddDate(0, 0, -daysAgo)
		createdAt := time.Date(day.Year(), day.Month(), day.Day(), f.Number(0, 23), f.Number(0, 59), 0, 0, now.Location())
		if createdAt.After(now) {
			createdAt = now
		}

		first, last := f.FirstName(), f.LastName()
		company := f.Company()
		l := &entity.Lead{
			ID:             uuid.NewString(),
			Name:           first + " " + last,
			Email:          strings.ToLower(first+"."+last) + "@" + slug(company) + ".com",
			Phone:          fmt.Sprintf("+1-%d-%d-%d", f.Number(100, 999), f.Number(100, 999), f.Number(1000, 9999)),
			Company:        company,
			Status:         status,
			EstimatedValue: decimal.NewFromInt(int64(f.Number(500, 20499))),
			Revenue:        decimal.Zero,
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		}
		if status == entity.LeadStatusConverted {
			l.Revenue = decimal.NewFromInt(int64(f.Number(1000, 15999)))
			l.Notes = "Lead convertido con éxito"
		}
		leads = append(leads, l)
	}
	return leads
}

func pickStatus(r float64) entity.LeadStatus {
	for _, w := range statusWeights {
		if r < w.upTo {
			return w.status
		}
	}
	return entity.LeadStatusLost
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "example"
	}
	return b.String()
}

func countByStatus(leads []*entity.Lead) map[entity.LeadStatus]int {
	out := make(map[entity.LeadStatus]int, len(entity.AllLeadStatuses()))
	for _, l := range leads {
		out[l.Status]++
	}
	return out
}
