package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasSufficientData(t *testing.T) {
	profile := &LeadTimeProfile{SampleSize: 9}
	assert.False(t, profile.HasSufficientData())

	profile.SampleSize = 10
	assert.True(t, profile.HasSufficientData())
}

func TestLeadTimeForServiceLevel(t *testing.T) {
	profile := &LeadTimeProfile{
		LeadTimeDays:    7,
		P50LeadTimeDays: 6,
		P90LeadTimeDays: 10,
		P95LeadTimeDays: 12,
	}

	assert.Equal(t, 6, profile.LeadTimeForServiceLevel(ServiceLevelP50))
	assert.Equal(t, 10, profile.LeadTimeForServiceLevel(ServiceLevelP90))
	assert.Equal(t, 12, profile.LeadTimeForServiceLevel(ServiceLevelP95))
}

func TestLeadTimeForServiceLevel_FallsBackToNominal(t *testing.T) {
	profile := &LeadTimeProfile{LeadTimeDays: 7}

	assert.Equal(t, 7, profile.LeadTimeForServiceLevel(ServiceLevelP90))
}

func TestObserveDelivery_FirstObservation(t *testing.T) {
	profile := &LeadTimeProfile{}
	orderedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expected := orderedAt.AddDate(0, 0, 7)
	actual := orderedAt.AddDate(0, 0, 6)

	profile.ObserveDelivery(orderedAt, expected, actual)

	assert.Equal(t, 1, profile.SampleSize)
	assert.Equal(t, 6, profile.LeadTimeDays)
	assert.Equal(t, 1.0, profile.OnTimeDeliveryRate)
	assert.Equal(t, 6, profile.P50LeadTimeDays)
	assert.NotNil(t, profile.LastUpdatedFromPO)
}

func TestObserveDelivery_LateDeliveryLowersOnTimeRate(t *testing.T) {
	profile := &LeadTimeProfile{}
	orderedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	profile.ObserveDelivery(orderedAt, orderedAt.AddDate(0, 0, 7), orderedAt.AddDate(0, 0, 6))
	profile.ObserveDelivery(orderedAt, orderedAt.AddDate(0, 0, 7), orderedAt.AddDate(0, 0, 10))

	assert.Equal(t, 2, profile.SampleSize)
	assert.Equal(t, 0.5, profile.OnTimeDeliveryRate)
	assert.Equal(t, 0.5, profile.ReliabilityScore)
	assert.False(t, profile.IsReliable())
	assert.Equal(t, 8, profile.LeadTimeDays)
	// The spread between 6d and 10d pushes P90 above the mean.
	assert.Greater(t, profile.P90LeadTimeDays, profile.P50LeadTimeDays)
	assert.GreaterOrEqual(t, profile.P95LeadTimeDays, profile.P90LeadTimeDays)
	assert.Equal(t, 6, profile.MinLeadTimeDays)
	assert.Equal(t, 10, profile.MaxLeadTimeDays)
}
