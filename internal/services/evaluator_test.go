// internal/services/evaluator_test.go
package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropwatch/dropwatch/internal/models"
	"github.com/dropwatch/dropwatch/internal/services"
)

func history(prices ...float64) []models.PriceObservation {
	obs := make([]models.PriceObservation, len(prices))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		obs[i] = models.PriceObservation{
			ProductURL: "https://example.com/item",
			Price:      p,
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
		}
	}
	return obs
}

func TestEvaluateFirstObservationNeverNotifies(t *testing.T) {
	e := services.NewEvaluator(0.05)

	decision, err := e.Evaluate(nil, 1.00)
	require.NoError(t, err)

	assert.False(t, decision.Notify)
	assert.False(t, decision.HasBaseline)
	assert.True(t, decision.IsLowest)
	assert.Zero(t, decision.DropFraction)
}

func TestEvaluateDropBeyondThreshold(t *testing.T) {
	e := services.NewEvaluator(0.05)

	decision, err := e.Evaluate(history(99.99), 79.99)
	require.NoError(t, err)

	assert.True(t, decision.Notify)
	assert.InDelta(t, 0.2000, decision.DropFraction, 0.0001)
	assert.Equal(t, 99.99, decision.Baseline)
	assert.True(t, decision.IsLowest)
}

func TestEvaluateDropBelowThreshold(t *testing.T) {
	e := services.NewEvaluator(0.05)

	decision, err := e.Evaluate(history(99.99), 97.00)
	require.NoError(t, err)

	assert.False(t, decision.Notify)
	assert.Less(t, decision.DropFraction, 0.05)
	assert.Greater(t, decision.DropFraction, 0.0)
	assert.True(t, decision.IsLowest)
}

func TestEvaluateEqualPriceNeverNotifies(t *testing.T) {
	e := services.NewEvaluator(0.05)

	decision, err := e.Evaluate(history(50.00), 50.00)
	require.NoError(t, err)

	assert.False(t, decision.Notify)
	assert.Zero(t, decision.DropFraction)
	// A later equal price is not a new running minimum.
	assert.False(t, decision.IsLowest)
}

func TestEvaluatePriceIncrease(t *testing.T) {
	e := services.NewEvaluator(0.05)

	decision, err := e.Evaluate(history(50.00), 75.00)
	require.NoError(t, err)

	assert.False(t, decision.Notify)
	assert.Zero(t, decision.DropFraction)
	assert.False(t, decision.IsLowest)
}

func TestEvaluateUsesRollingMinimumAsBaseline(t *testing.T) {
	e := services.NewEvaluator(0.05)

	// The floor is 90, not the starting 100: a price that only beats the
	// starting point does not re-alert.
	decision, err := e.Evaluate(history(100, 90, 95), 86.00)
	require.NoError(t, err)
	assert.Equal(t, 90.0, decision.Baseline)
	assert.False(t, decision.Notify)

	decision, err = e.Evaluate(history(100, 90, 95), 85.00)
	require.NoError(t, err)
	assert.True(t, decision.Notify)
	assert.InDelta(t, (90.0-85.0)/90.0, decision.DropFraction, 0.0001)
}

func TestEvaluateInvalidBaseline(t *testing.T) {
	e := services.NewEvaluator(0.05)

	_, err := e.Evaluate(history(0), 10.00)
	assert.ErrorIs(t, err, models.ErrInvalidBaseline)

	_, err = e.Evaluate(history(-5), 10.00)
	assert.ErrorIs(t, err, models.ErrInvalidBaseline)
}
