package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"miracars-bot/internal/settings"
)

func testConfig() settings.Record {
	return settings.Record{
		CarCategories:  map[string]float64{"SUV": 50, "Economy": 25},
		Extras:         map[string]float64{"GPS": 5, "Child Seat": 4},
		DepositPercent: 30,
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDayCount(t *testing.T) {
	tests := []struct {
		name    string
		pickup  string
		dropoff string
		want    int
	}{
		{"three days", "2025-06-01", "2025-06-04", 3},
		{"single day", "2025-06-01", "2025-06-02", 1},
		{"same day forced to one", "2025-06-01", "2025-06-01", 1},
		{"dropoff before pickup forced to one", "2025-06-04", "2025-06-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayCount(date(tt.pickup), date(tt.dropoff)); got != tt.want {
				t.Errorf("DayCount(%s, %s) = %d, want %d", tt.pickup, tt.dropoff, got, tt.want)
			}
		})
	}
}

func TestDayCountPartialDayRoundsUp(t *testing.T) {
	pickup := date("2025-06-01").Add(10 * time.Hour)
	dropoff := date("2025-06-03").Add(12 * time.Hour)

	if got := DayCount(pickup, dropoff); got != 3 {
		t.Errorf("DayCount = %d, want 3 (2 days 2 hours rounds up)", got)
	}
}

func TestDayCountMissingDates(t *testing.T) {
	if got := DayCount(time.Time{}, date("2025-06-04")); got != 1 {
		t.Errorf("DayCount with zero pickup = %d, want 1", got)
	}
}

func TestComputeQuoteScenario(t *testing.T) {
	// SUV at 50/day for 3 days with GPS at 5/day, 30% deposit.
	q, err := ComputeQuote(Request{
		Pickup:        date("2025-06-01"),
		Dropoff:       date("2025-06-04"),
		Category:      "SUV",
		Extras:        []string{"GPS"},
		PaymentMethod: "Bank Deposit",
	}, testConfig())
	if err != nil {
		t.Fatalf("ComputeQuote: %v", err)
	}

	if q.Days != 3 {
		t.Errorf("days = %d, want 3", q.Days)
	}
	if q.BasePrice != 150 {
		t.Errorf("base = %v, want 150.00", q.BasePrice)
	}
	if q.ExtrasPrice != 15 {
		t.Errorf("extras = %v, want 15.00", q.ExtrasPrice)
	}
	if q.Total != 165 {
		t.Errorf("total = %v, want 165.00", q.Total)
	}
	if q.Deposit != 49.5 {
		t.Errorf("deposit = %v, want 49.50", q.Deposit)
	}
	if q.PaymentInstructions == "" || q.PaymentInstructions == GenericInstructions {
		t.Errorf("expected specific bank deposit instructions, got %q", q.PaymentInstructions)
	}
}

func TestComputeQuoteMissingCategory(t *testing.T) {
	_, err := ComputeQuote(Request{
		Pickup:  date("2025-06-01"),
		Dropoff: date("2025-06-04"),
	}, testConfig())

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Prompt == "" {
		t.Error("validation error should carry a prompt")
	}
}

func TestComputeQuoteMissingDates(t *testing.T) {
	_, err := ComputeQuote(Request{Category: "SUV"}, testConfig())

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestComputeQuoteUnknownNamesPriceAtZero(t *testing.T) {
	q, err := ComputeQuote(Request{
		Pickup:   date("2025-06-01"),
		Dropoff:  date("2025-06-03"),
		Category: "Limousine",
		Extras:   []string{"Jet Ski"},
	}, testConfig())
	if err != nil {
		t.Fatalf("ComputeQuote: %v", err)
	}

	if q.BasePrice != 0 || q.ExtrasPrice != 0 || q.Total != 0 {
		t.Errorf("unknown names should price at zero, got %+v", q)
	}
}

func TestComputeQuoteIdempotent(t *testing.T) {
	req := Request{
		Pickup:        date("2025-06-01"),
		Dropoff:       date("2025-06-04"),
		Category:      "SUV",
		Extras:        []string{"GPS", "Child Seat"},
		PaymentMethod: "PayPal",
	}
	cfg := testConfig()

	first, err := ComputeQuote(req, cfg)
	if err != nil {
		t.Fatalf("ComputeQuote: %v", err)
	}
	second, err := ComputeQuote(req, cfg)
	if err != nil {
		t.Fatalf("ComputeQuote: %v", err)
	}
	if *first != *second {
		t.Errorf("quotes differ for identical inputs: %+v vs %+v", first, second)
	}
}

func TestComputeQuoteZeroDepositPercent(t *testing.T) {
	cfg := testConfig()
	cfg.DepositPercent = 0

	q, err := ComputeQuote(Request{
		Pickup:   date("2025-06-01"),
		Dropoff:  date("2025-06-04"),
		Category: "SUV",
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeQuote: %v", err)
	}
	if q.Deposit != 0 {
		t.Errorf("deposit = %v, want 0 when percentage is 0", q.Deposit)
	}
}

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.125, 0.13},
		{0.375, 0.38},
		{49.494, 49.49},
		{165.0, 165.0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInstructionsForUnknownMethod(t *testing.T) {
	if got := InstructionsFor("Bitcoin"); got != GenericInstructions {
		t.Errorf("InstructionsFor(Bitcoin) = %q, want generic fallback", got)
	}
}
