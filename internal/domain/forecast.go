// backend-go/internal/domain/forecast.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModelType identifies which upstream model family produced a forecast.
type ModelType string

const (
	ModelProphet       ModelType = "PROPHET"
	ModelLightGBM      ModelType = "LIGHTGBM"
	ModelPyTorchDeepAR ModelType = "PYTORCH_DEEPAR"
	ModelPyTorchNBEATS ModelType = "PYTORCH_NBEATS"
	ModelPyTorchTFT    ModelType = "PYTORCH_TFT"
	ModelEnsemble      ModelType = "ENSEMBLE"
)

// DemandForecast is one immutable percentile demand projection for a
// (store, product) key. The percentile fields are daily demand rates over
// the horizon. Newer forecasts supersede older ones for the same key; only
// the row flagged active is trusted for decisioning.
type DemandForecast struct {
	ID              uuid.UUID `json:"id" db:"id"`
	StoreID         uuid.UUID `json:"store_id" db:"store_id"`
	ProductID       uuid.UUID `json:"product_id" db:"product_id"`
	ForecastDate    time.Time `json:"forecast_date" db:"forecast_date"`
	HorizonDays     int       `json:"horizon_days" db:"horizon_days"`
	P50Forecast     float64   `json:"p50_forecast" db:"p50_forecast"`
	P90Forecast     float64   `json:"p90_forecast" db:"p90_forecast"`
	P95Forecast     float64   `json:"p95_forecast" db:"p95_forecast"`
	ConfidenceLower float64   `json:"confidence_lower" db:"confidence_lower"`
	ConfidenceUpper float64   `json:"confidence_upper" db:"confidence_upper"`
	ModelVersion    string    `json:"model_version" db:"model_version"`
	ModelType       ModelType `json:"model_type" db:"model_type"`
	MAE             float64   `json:"mae" db:"mae"`
	MAPE            float64   `json:"mape" db:"mape"`
	RMSE            float64   `json:"rmse" db:"rmse"`
	Coverage        float64   `json:"coverage" db:"coverage"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ForecastValue returns the demand rate at the requested percentile.
func (f *DemandForecast) ForecastValue(level ServiceLevel) float64 {
	switch level {
	case ServiceLevelP90:
		return f.P90Forecast
	case ServiceLevelP95:
		return f.P95Forecast
	default:
		return f.P50Forecast
	}
}

// IsRecent reports whether the forecast was issued within the last week.
func (f *DemandForecast) IsRecent() bool {
	return f.ForecastDate.After(time.Now().AddDate(0, 0, -7))
}

// HasGoodAccuracy reports whether backtested MAPE is under 20%.
func (f *DemandForecast) HasGoodAccuracy() bool {
	return f.MAPE > 0 && f.MAPE < 20
}
