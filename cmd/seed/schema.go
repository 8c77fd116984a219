// backend-go/cmd/seed/schema.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

// schemaDDL creates every table the engine reads and writes. Requires
// postgres 15+ for UNIQUE NULLS NOT DISTINCT on lead time profiles.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS stores (
	id         UUID PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS suppliers (
	id                 UUID PRIMARY KEY,
	code               TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL,
	lead_time_days     INTEGER NOT NULL DEFAULT 0,
	min_order_quantity INTEGER NOT NULL DEFAULT 0,
	min_order_value    BIGINT NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id             UUID PRIMARY KEY,
	sku            TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	supplier_id    UUID NOT NULL REFERENCES suppliers (id),
	unit_cost      BIGINT NOT NULL DEFAULT 0,
	case_pack_size INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory_snapshots (
	seq               BIGSERIAL PRIMARY KEY,
	id                UUID NOT NULL UNIQUE,
	store_id          UUID NOT NULL REFERENCES stores (id),
	product_id        UUID NOT NULL REFERENCES products (id),
	quantity_on_hand  INTEGER NOT NULL CHECK (quantity_on_hand >= 0),
	quantity_reserved INTEGER NOT NULL DEFAULT 0,
	quantity_on_order INTEGER NOT NULL DEFAULT 0,
	cost_per_unit     BIGINT NOT NULL DEFAULT 0,
	reorder_point     INTEGER NOT NULL DEFAULT 0,
	max_stock_level   INTEGER NOT NULL DEFAULT 0,
	change_reason     TEXT NOT NULL DEFAULT '',
	idempotency_key   TEXT,
	recorded_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_position
	ON inventory_snapshots (store_id, product_id, recorded_at DESC, seq DESC);

CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshots_idempotency
	ON inventory_snapshots (store_id, product_id, idempotency_key)
	WHERE idempotency_key IS NOT NULL;

CREATE TABLE IF NOT EXISTS supplier_lead_time_profiles (
	id                    UUID PRIMARY KEY,
	supplier_id           UUID NOT NULL REFERENCES suppliers (id),
	product_id            UUID REFERENCES products (id),
	lead_time_days        INTEGER NOT NULL DEFAULT 0,
	lead_time_std_days    DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_lead_time_days    INTEGER NOT NULL DEFAULT 0,
	max_lead_time_days    INTEGER NOT NULL DEFAULT 0,
	p50_lead_time_days    INTEGER NOT NULL DEFAULT 0,
	p90_lead_time_days    INTEGER NOT NULL DEFAULT 0,
	p95_lead_time_days    INTEGER NOT NULL DEFAULT 0,
	reliability_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	on_time_delivery_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	sample_size           INTEGER NOT NULL DEFAULT 0,
	last_updated_from_po  TIMESTAMPTZ,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE NULLS NOT DISTINCT (supplier_id, product_id)
);

CREATE TABLE IF NOT EXISTS demand_forecasts (
	id               UUID PRIMARY KEY,
	store_id         UUID NOT NULL REFERENCES stores (id),
	product_id       UUID NOT NULL REFERENCES products (id),
	forecast_date    TIMESTAMPTZ NOT NULL,
	horizon_days     INTEGER NOT NULL DEFAULT 0,
	p50_forecast     DOUBLE PRECISION NOT NULL DEFAULT 0,
	p90_forecast     DOUBLE PRECISION NOT NULL DEFAULT 0,
	p95_forecast     DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence_lower DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence_upper DOUBLE PRECISION NOT NULL DEFAULT 0,
	model_version    TEXT NOT NULL DEFAULT '',
	model_type       TEXT NOT NULL DEFAULT '',
	mae              DOUBLE PRECISION NOT NULL DEFAULT 0,
	mape             DOUBLE PRECISION NOT NULL DEFAULT 0,
	rmse             DOUBLE PRECISION NOT NULL DEFAULT 0,
	coverage         DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_active        BOOLEAN NOT NULL DEFAULT FALSE,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_forecasts_active
	ON demand_forecasts (store_id, product_id)
	WHERE is_active;

CREATE TABLE IF NOT EXISTS purchase_orders (
	id                     UUID PRIMARY KEY,
	order_number           TEXT NOT NULL UNIQUE,
	store_id               UUID NOT NULL REFERENCES stores (id),
	supplier_id            UUID NOT NULL REFERENCES suppliers (id),
	status                 TEXT NOT NULL,
	priority               TEXT NOT NULL,
	total_amount           BIGINT NOT NULL DEFAULT 0,
	tax_amount             BIGINT NOT NULL DEFAULT 0,
	shipping_amount        BIGINT NOT NULL DEFAULT 0,
	order_date             TIMESTAMPTZ NOT NULL,
	expected_delivery_date TIMESTAMPTZ NOT NULL,
	actual_delivery_date   TIMESTAMPTZ,
	created_by             TEXT NOT NULL DEFAULT '',
	approved_by            TEXT,
	submitted_at           TIMESTAMPTZ,
	approved_at            TIMESTAMPTZ,
	sent_at                TIMESTAMPTZ,
	received_at            TIMESTAMPTZ,
	notes                  TEXT,
	version                BIGINT NOT NULL DEFAULT 1,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_purchase_orders_store_status
	ON purchase_orders (store_id, status, created_at DESC);

CREATE TABLE IF NOT EXISTS purchase_order_items (
	id                UUID PRIMARY KEY,
	purchase_order_id UUID NOT NULL REFERENCES purchase_orders (id) ON DELETE CASCADE,
	product_id        UUID NOT NULL REFERENCES products (id),
	sku               TEXT NOT NULL,
	quantity_ordered  INTEGER NOT NULL,
	quantity_received INTEGER NOT NULL DEFAULT 0,
	unit_cost         BIGINT NOT NULL DEFAULT 0,
	notes             TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func applySchema(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema applied successfully!")
	return nil
}
