// internal/services/evaluator.go
package services

import (
	"github.com/dropwatch/dropwatch/internal/models"
)

// Evaluator turns "history vs new price" into an alert decision.
//
// Policy: rolling minimum. The baseline for a new observation is the lowest
// price recorded before it, so an alert fires only when the price beats the
// historical floor by the configured threshold. A price that merely stays
// below where tracking started does not re-alert.
type Evaluator struct {
	threshold float64
}

func NewEvaluator(threshold float64) *Evaluator {
	return &Evaluator{threshold: threshold}
}

// Decision carries the alert verdict plus the data needed to record the
// observation correctly.
type Decision struct {
	// Notify is true when the drop against the baseline meets the threshold.
	Notify bool
	// DropFraction is (baseline - new) / baseline, zero when no drop.
	DropFraction float64
	// Baseline is the pre-observation running minimum; zero without history.
	Baseline float64
	// HasBaseline is false for a product's very first observation.
	HasBaseline bool
	// IsLowest marks a new running minimum (first occurrence wins ties).
	IsLowest bool
}

// Evaluate inspects prior history and a newly observed price. The first
// observation of a product never notifies; equal prices never notify.
func (e *Evaluator) Evaluate(history []models.PriceObservation, newPrice float64) (*Decision, error) {
	if len(history) == 0 {
		return &Decision{IsLowest: true}, nil
	}

	baseline := history[0].Price
	for _, obs := range history[1:] {
		if obs.Price < baseline {
			baseline = obs.Price
		}
	}

	if baseline <= 0 {
		return nil, models.ErrInvalidBaseline
	}

	decision := &Decision{
		Baseline:    baseline,
		HasBaseline: true,
		IsLowest:    newPrice < baseline,
	}

	if baseline > newPrice {
		decision.DropFraction = (baseline - newPrice) / baseline
		decision.Notify = decision.DropFraction >= e.threshold
	}

	return decision, nil
}
