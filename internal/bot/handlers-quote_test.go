package bot

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"miracars-bot/internal/pricing"
)

func TestParseInputDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-06-01", "2025-06-01"},
		{"01.06.2025", "2025-06-01"},
		{"01/06/2025", "2025-06-01"},
		{"  2025-06-01  ", "2025-06-01"},
	}

	for _, tt := range tests {
		date, ok := parseInputDate(tt.in)
		if !ok {
			t.Errorf("parseInputDate(%q) failed", tt.in)
			continue
		}
		if got := date.Format(dateLayout); got != tt.want {
			t.Errorf("parseInputDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "soon", "2025-13-40"} {
		if _, ok := parseInputDate(in); ok {
			t.Errorf("parseInputDate(%q) succeeded, want failure", in)
		}
	}
}

func TestParseInputDateButtons(t *testing.T) {
	for _, in := range []string{buttonToday, buttonTomorrow} {
		if _, ok := parseInputDate(in); !ok {
			t.Errorf("parseInputDate(%q) failed", in)
		}
	}
}

func TestStartOfDayKeepsLocalDate(t *testing.T) {
	athens := time.FixedZone("EET+3", 3*60*60)
	evening := time.Date(2025, 6, 1, 23, 30, 0, 0, athens)

	day := startOfDay(evening)
	if got := day.Format(dateLayout); got != "2025-06-01" {
		t.Errorf("startOfDay(%v) = %s, want 2025-06-01", evening, got)
	}
	if next := day.AddDate(0, 0, 1).Format(dateLayout); next != "2025-06-02" {
		t.Errorf("next day = %s, want 2025-06-02", next)
	}
}

func TestToggleName(t *testing.T) {
	list := toggleName(nil, "GPS")
	if !reflect.DeepEqual(list, []string{"GPS"}) {
		t.Fatalf("toggle on = %v", list)
	}

	list = toggleName(list, "Child Seat")
	list = toggleName(list, "GPS")
	if !reflect.DeepEqual(list, []string{"Child Seat"}) {
		t.Fatalf("toggle off = %v, want [Child Seat]", list)
	}
}

func TestQuoteRequestFromState(t *testing.T) {
	state := UserState{
		Pickup:        "2025-06-01",
		Dropoff:       "2025-06-04",
		Category:      "SUV",
		Extras:        []string{"GPS"},
		PaymentMethod: "PayPal",
	}

	req := quoteRequestFromState(state)
	if req.Pickup.Format(dateLayout) != "2025-06-01" || req.Dropoff.Format(dateLayout) != "2025-06-04" {
		t.Errorf("dates not carried over: %+v", req)
	}
	if req.Category != "SUV" || req.PaymentMethod != "PayPal" {
		t.Errorf("fields not carried over: %+v", req)
	}
}

func TestFormatQuoteHidesZeroLines(t *testing.T) {
	q := &pricing.Quote{Days: 2, BasePrice: 60, Total: 60}

	text := formatQuote(q)
	if strings.Contains(text, "Extras:") {
		t.Errorf("quote text should omit zero extras line:\n%s", text)
	}
	if strings.Contains(text, "Deposit") {
		t.Errorf("quote text should omit zero deposit line:\n%s", text)
	}
	if !strings.Contains(text, "Total: 60.00 EUR") {
		t.Errorf("quote text missing total:\n%s", text)
	}
}
