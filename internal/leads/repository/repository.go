// Package repository persists accepted leads in Postgres.
package repository

import (
	"context"
	"fmt"

	"spartan_estimator/internal/leads/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides data access for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a lead. Re-inserting the same ID is a no-op.
func (r *Repository) Insert(ctx context.Context, lead domain.Lead) error {
	est := lead.Estimate
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (
			id, name, phone, phone_e164, address,
			service, stories, window_type, pane_count,
			solar_panels, solar_screens, pressure_wash_sides, soft_wash_sides,
			permanent_lighting, hard_water_spots,
			estimate_min, estimate_max, source, client_ip_hash, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO NOTHING
	`,
		lead.ID, lead.Name, lead.Phone, nilIfEmpty(lead.PhoneE164), lead.Address,
		est.Service, est.Stories, est.WindowType, est.PaneCount,
		est.SolarPanels, est.SolarScreens, est.PressureWashSides, est.SoftWashSides,
		est.PermanentLighting, est.HardWaterSpots,
		lead.EstimatedTotal.Min, lead.EstimatedTotal.Max, lead.Source, nilIfEmpty(lead.IPHash), lead.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead %s: %w", lead.ID, err)
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
