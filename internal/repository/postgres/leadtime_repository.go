// backend-go/internal/repository/postgres/leadtime_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

type leadTimeStore struct {
	db *DB
}

// NewLeadTimeStore returns the postgres-backed lead time profile store.
// Supplier-wide profiles are stored with a NULL product_id.
func NewLeadTimeStore(db *DB) *leadTimeStore {
	return &leadTimeStore{db: db}
}

const leadTimeColumns = `
	id, supplier_id,
	COALESCE(product_id, '00000000-0000-0000-0000-000000000000'::uuid) AS product_id,
	lead_time_days, lead_time_std_days, min_lead_time_days, max_lead_time_days,
	p50_lead_time_days, p90_lead_time_days, p95_lead_time_days,
	reliability_score, on_time_delivery_rate, sample_size,
	last_updated_from_po, created_at, updated_at
`

func (r *leadTimeStore) Profile(ctx context.Context, supplierID, productID uuid.UUID) (*domain.LeadTimeProfile, error) {
	// Prefer the product-specific row, fall back to the supplier-wide one.
	query := `
		SELECT ` + leadTimeColumns + `
		FROM supplier_lead_time_profiles
		WHERE supplier_id = $1 AND (product_id = $2 OR product_id IS NULL)
		ORDER BY product_id NULLS LAST
		LIMIT 1
	`

	var profile domain.LeadTimeProfile
	if err := sqlx.GetContext(ctx, r.db, &profile, query, supplierID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead time profile: %w", err)
	}

	return &profile, nil
}

func (r *leadTimeStore) Save(ctx context.Context, profile *domain.LeadTimeProfile) error {
	query := `
		INSERT INTO supplier_lead_time_profiles (
			id, supplier_id, product_id,
			lead_time_days, lead_time_std_days, min_lead_time_days, max_lead_time_days,
			p50_lead_time_days, p90_lead_time_days, p95_lead_time_days,
			reliability_score, on_time_delivery_rate, sample_size,
			last_updated_from_po, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (supplier_id, product_id) DO UPDATE SET
			lead_time_days = EXCLUDED.lead_time_days,
			lead_time_std_days = EXCLUDED.lead_time_std_days,
			min_lead_time_days = EXCLUDED.min_lead_time_days,
			max_lead_time_days = EXCLUDED.max_lead_time_days,
			p50_lead_time_days = EXCLUDED.p50_lead_time_days,
			p90_lead_time_days = EXCLUDED.p90_lead_time_days,
			p95_lead_time_days = EXCLUDED.p95_lead_time_days,
			reliability_score = EXCLUDED.reliability_score,
			on_time_delivery_rate = EXCLUDED.on_time_delivery_rate,
			sample_size = EXCLUDED.sample_size,
			last_updated_from_po = EXCLUDED.last_updated_from_po,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.SupplierID, uuidOrNil(profile.ProductID),
		profile.LeadTimeDays, profile.LeadTimeStdDays, profile.MinLeadTimeDays, profile.MaxLeadTimeDays,
		profile.P50LeadTimeDays, profile.P90LeadTimeDays, profile.P95LeadTimeDays,
		profile.ReliabilityScore, profile.OnTimeDeliveryRate, profile.SampleSize,
		profile.LastUpdatedFromPO, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lead time profile: %w", err)
	}

	return nil
}

func uuidOrNil(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}
