package analysis

import (
	"golang.org/x/time/rate"
)

// Budget bounds how many Tier 2 verification calls may be spent per
// hour. Exhaustion downgrades decisions rather than erroring.
type Budget struct {
	limiter *rate.Limiter
}

// NewBudget creates a budget allowing callsPerHour verification calls,
// with a small burst so back-to-back hot listings are not starved.
func NewBudget(callsPerHour int) *Budget {
	if callsPerHour <= 0 {
		return &Budget{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	burst := callsPerHour / 10
	if burst < 1 {
		burst = 1
	}
	return &Budget{limiter: rate.NewLimiter(rate.Limit(float64(callsPerHour)/3600.0), burst)}
}

// Allow reports whether one more verification call fits the budget.
func (b *Budget) Allow() bool {
	return b.limiter.Allow()
}
