// backend-go/internal/repository/postgres/forecast_repository.go
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

type forecastStore struct {
	db *DB
}

// NewForecastStore returns the postgres-backed forecast store. Forecasts are
// immutable rows; ingesting a new one deactivates the previously active row
// for the same (store, product).
func NewForecastStore(db *DB) *forecastStore {
	return &forecastStore{db: db}
}

func (r *forecastStore) ActiveForecast(ctx context.Context, storeID, productID uuid.UUID) (*domain.DemandForecast, error) {
	query := `
		SELECT id, store_id, product_id, forecast_date, horizon_days,
		       p50_forecast, p90_forecast, p95_forecast,
		       confidence_lower, confidence_upper,
		       model_version, model_type, mae, mape, rmse, coverage,
		       is_active, created_at
		FROM demand_forecasts
		WHERE store_id = $1 AND product_id = $2 AND is_active = TRUE
		ORDER BY forecast_date DESC
		LIMIT 1
	`

	var forecast domain.DemandForecast
	if err := sqlx.GetContext(ctx, r.db, &forecast, query, storeID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active forecast: %w", err)
	}

	return &forecast, nil
}

func (r *forecastStore) Save(ctx context.Context, forecast *domain.DemandForecast) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE demand_forecasts
			SET is_active = FALSE
			WHERE store_id = $1 AND product_id = $2 AND is_active = TRUE
		`, forecast.StoreID, forecast.ProductID)
		if err != nil {
			return fmt.Errorf("failed to deactivate prior forecast: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO demand_forecasts (
				id, store_id, product_id, forecast_date, horizon_days,
				p50_forecast, p90_forecast, p95_forecast,
				confidence_lower, confidence_upper,
				model_version, model_type, mae, mape, rmse, coverage,
				is_active, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`,
			forecast.ID, forecast.StoreID, forecast.ProductID, forecast.ForecastDate, forecast.HorizonDays,
			forecast.P50Forecast, forecast.P90Forecast, forecast.P95Forecast,
			forecast.ConfidenceLower, forecast.ConfidenceUpper,
			forecast.ModelVersion, forecast.ModelType, forecast.MAE, forecast.MAPE, forecast.RMSE, forecast.Coverage,
			forecast.IsActive, forecast.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert forecast: %w", err)
		}

		return nil
	})
}
