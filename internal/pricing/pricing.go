package pricing

import (
	"fmt"
	"math"
	"time"

	"miracars-bot/internal/settings"
)

// Request carries the inputs of a single quote calculation. Nothing here
// is persisted; a request is rebuilt from the dialog on every change.
type Request struct {
	Pickup        time.Time
	Dropoff       time.Time
	Category      string
	Extras        []string
	PaymentMethod string
}

// Quote is the derived price breakdown. All monetary amounts are rounded
// half-up to the cents boundary.
type Quote struct {
	Days                int
	BasePrice           float64
	ExtrasPrice         float64
	Total               float64
	Deposit             float64
	PaymentInstructions string
}

// ValidationError signals missing or unusable quote input. Its message is
// shown to the user as a prompt, not treated as a fault.
type ValidationError struct {
	Prompt string
}

func (e *ValidationError) Error() string {
	return e.Prompt
}

// DayCount returns the billable rental days: the ceiling of the date span
// in whole days, floored at 1. A drop-off at or before pickup, or a
// missing date, deliberately counts as a one-day rental.
func DayCount(pickup, dropoff time.Time) int {
	if pickup.IsZero() || dropoff.IsZero() {
		return 1
	}
	span := dropoff.Sub(pickup)
	days := int(math.Ceil(span.Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// ComputeQuote derives the price breakdown for a request against the
// current configuration. Pure and idempotent: identical inputs always
// yield an identical quote. Unknown categories and extras price at zero
// rather than failing.
func ComputeQuote(req Request, cfg settings.Record) (*Quote, error) {
	if req.Pickup.IsZero() || req.Dropoff.IsZero() {
		return nil, &ValidationError{Prompt: "Please choose both a pickup and a drop-off date."}
	}
	if req.Category == "" {
		return nil, &ValidationError{Prompt: "Please choose a vehicle category."}
	}

	days := DayCount(req.Pickup, req.Dropoff)

	base := cfg.CarCategories[req.Category] * float64(days)

	var extras float64
	for _, name := range req.Extras {
		extras += cfg.Extras[name] * float64(days)
	}

	subtotal := base + extras

	var deposit float64
	if cfg.DepositPercent > 0 {
		deposit = Round2(subtotal * cfg.DepositPercent / 100)
	}

	q := &Quote{
		Days:        days,
		BasePrice:   Round2(base),
		ExtrasPrice: Round2(extras),
		Total:       Round2(subtotal),
		Deposit:     deposit,
	}

	if req.PaymentMethod != "" {
		q.PaymentInstructions = InstructionsFor(req.PaymentMethod)
	}

	return q, nil
}

// Round2 rounds to two decimal places, half-up on the cents boundary.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
