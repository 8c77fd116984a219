// backend-go/internal/domain/leadtime.go
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ServiceLevel selects which percentile of a distribution to plan against.
type ServiceLevel string

const (
	ServiceLevelP50 ServiceLevel = "P50"
	ServiceLevelP90 ServiceLevel = "P90"
	ServiceLevelP95 ServiceLevel = "P95"
)

// ParseServiceLevel maps the wire form onto a known percentile.
func ParseServiceLevel(raw string) (ServiceLevel, bool) {
	switch ServiceLevel(raw) {
	case ServiceLevelP50, ServiceLevelP90, ServiceLevelP95:
		return ServiceLevel(raw), true
	default:
		return "", false
	}
}

// minLeadTimeSamples is the sample size below which percentile fields are
// not trusted for planning.
const minLeadTimeSamples = 10

// LeadTimeProfile carries delivery statistics for a supplier, optionally
// narrowed to a single product. Profiles are refreshed from delivered
// purchase orders, never edited by hand.
type LeadTimeProfile struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	SupplierID         uuid.UUID  `json:"supplier_id" db:"supplier_id"`
	ProductID          uuid.UUID  `json:"product_id,omitempty" db:"product_id"`
	LeadTimeDays       int        `json:"lead_time_days" db:"lead_time_days"`
	LeadTimeStdDays    float64    `json:"lead_time_std_days" db:"lead_time_std_days"`
	MinLeadTimeDays    int        `json:"min_lead_time_days" db:"min_lead_time_days"`
	MaxLeadTimeDays    int        `json:"max_lead_time_days" db:"max_lead_time_days"`
	P50LeadTimeDays    int        `json:"p50_lead_time_days" db:"p50_lead_time_days"`
	P90LeadTimeDays    int        `json:"p90_lead_time_days" db:"p90_lead_time_days"`
	P95LeadTimeDays    int        `json:"p95_lead_time_days" db:"p95_lead_time_days"`
	ReliabilityScore   float64    `json:"reliability_score" db:"reliability_score"`
	OnTimeDeliveryRate float64    `json:"on_time_delivery_rate" db:"on_time_delivery_rate"`
	SampleSize         int        `json:"sample_size" db:"sample_size"`
	LastUpdatedFromPO  *time.Time `json:"last_updated_from_po,omitempty" db:"last_updated_from_po"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// HasSufficientData reports whether enough deliveries were observed for the
// percentile fields to be statistically meaningful.
func (p *LeadTimeProfile) HasSufficientData() bool {
	return p.SampleSize >= minLeadTimeSamples
}

// IsReliable reports whether the supplier's reliability score clears 0.8.
func (p *LeadTimeProfile) IsReliable() bool {
	return p.ReliabilityScore >= 0.8
}

// LeadTimeForServiceLevel returns the lead time at the requested percentile,
// falling back to the nominal lead time when the percentile is unknown.
func (p *LeadTimeProfile) LeadTimeForServiceLevel(level ServiceLevel) int {
	var days int
	switch level {
	case ServiceLevelP50:
		days = p.P50LeadTimeDays
	case ServiceLevelP90:
		days = p.P90LeadTimeDays
	case ServiceLevelP95:
		days = p.P95LeadTimeDays
	}
	if days <= 0 {
		return p.LeadTimeDays
	}
	return days
}

// ObserveDelivery folds one completed purchase order into the profile:
// incremental mean/variance, min/max, on-time rate and normal-approximated
// percentiles. expected and actual are delivery dates; onTime means actual
// did not slip past expected.
func (p *LeadTimeProfile) ObserveDelivery(orderedAt, expected, actual time.Time) {
	observedDays := actual.Sub(orderedAt).Hours() / 24
	if observedDays < 0 {
		observedDays = 0
	}
	onTime := !actual.After(expected)

	n := float64(p.SampleSize)
	mean := float64(p.LeadTimeDays)
	if p.SampleSize == 0 {
		mean = observedDays
		p.LeadTimeStdDays = 0
		p.MinLeadTimeDays = int(math.Floor(observedDays))
		p.MaxLeadTimeDays = int(math.Ceil(observedDays))
	} else {
		// Welford update over the previous mean and variance.
		variance := p.LeadTimeStdDays * p.LeadTimeStdDays
		delta := observedDays - mean
		mean += delta / (n + 1)
		variance = (variance*n + delta*(observedDays-mean)) / (n + 1)
		p.LeadTimeStdDays = math.Sqrt(variance)
		if d := int(math.Floor(observedDays)); d < p.MinLeadTimeDays {
			p.MinLeadTimeDays = d
		}
		if d := int(math.Ceil(observedDays)); d > p.MaxLeadTimeDays {
			p.MaxLeadTimeDays = d
		}
	}

	onTimeCount := p.OnTimeDeliveryRate * n
	if onTime {
		onTimeCount++
	}

	p.SampleSize++
	p.LeadTimeDays = int(math.Round(mean))
	p.OnTimeDeliveryRate = onTimeCount / float64(p.SampleSize)
	p.ReliabilityScore = p.OnTimeDeliveryRate

	// Normal approximation until a real percentile store is warranted.
	p.P50LeadTimeDays = int(math.Round(mean))
	p.P90LeadTimeDays = int(math.Ceil(mean + 1.2816*p.LeadTimeStdDays))
	p.P95LeadTimeDays = int(math.Ceil(mean + 1.6449*p.LeadTimeStdDays))

	now := actual
	p.LastUpdatedFromPO = &now
	p.UpdatedAt = time.Now()
}
