package booking

import (
	"errors"
	"strings"
	"testing"
	"time"

	"miracars-bot/internal/pricing"
	"miracars-bot/internal/settings"
)

func testConfig() settings.Record {
	return settings.Record{
		CarCategories:  map[string]float64{"SUV": 50},
		Extras:         map[string]float64{"GPS": 5},
		DepositPercent: 30,
		AdminEmail:     "bookings@miracars.gr",
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testRequest() Request {
	return Request{
		Name:          "Maria Papadopoulou",
		Email:         "maria@example.com",
		Phone:         "+30 697 000 1111",
		Category:      "SUV",
		Extras:        []string{"GPS"},
		Pickup:        date("2025-06-01"),
		Dropoff:       date("2025-06-04"),
		PaymentMethod: "Bank Deposit",
		Notes:         "Arriving on the evening ferry.",
	}
}

func TestComposeBodyLineOrder(t *testing.T) {
	quote, body, err := Compose(testRequest(), testConfig())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if quote.Days != 3 || quote.Total != 165 || quote.Deposit != 49.5 {
		t.Fatalf("quote = %+v, want 3 days / 165.00 / 49.50", quote)
	}

	want := strings.Join([]string{
		"Name: Maria Papadopoulou",
		"Email: maria@example.com",
		"Phone: +30 697 000 1111",
		"",
		"Category: SUV",
		"Extras: GPS",
		"Pickup: 2025-06-01",
		"Dropoff: 2025-06-04",
		"Days: 3",
		"",
		"Base price: 150.00 EUR",
		"Extras price: 15.00 EUR",
		"Total: 165.00 EUR",
		"Deposit: 49.50 EUR",
		"Payment method: Bank Deposit",
		"",
		"Notes: Arriving on the evening ferry.",
		"",
	}, "\n")
	if body != want {
		t.Errorf("body mismatch:\ngot:\n%s\nwant:\n%s", body, want)
	}
}

func TestComposeOmitsOptionalLines(t *testing.T) {
	req := testRequest()
	req.Extras = nil
	req.Notes = ""
	req.PaymentMethod = ""

	cfg := testConfig()
	cfg.DepositPercent = 0

	_, body, err := Compose(req, cfg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	for _, unwanted := range []string{"Extras price:", "Deposit:", "Payment method:", "Notes:"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("body should omit %q when empty:\n%s", unwanted, body)
		}
	}
	if !strings.Contains(body, "Extras: none") {
		t.Errorf("body should state no extras were picked:\n%s", body)
	}
}

func TestComposeRejectsBlankIdentity(t *testing.T) {
	for _, field := range []string{"name", "email", "phone"} {
		req := testRequest()
		switch field {
		case "name":
			req.Name = "   "
		case "email":
			req.Email = ""
		case "phone":
			req.Phone = "\t"
		}

		_, _, err := Compose(req, testConfig())
		var verr *pricing.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("blank %s: err = %v, want ValidationError", field, err)
		}
	}
}

func TestComposeUsesQuoteFormulas(t *testing.T) {
	// Same-day rental must price as one day, matching the live quote rule.
	req := testRequest()
	req.Dropoff = req.Pickup

	quote, body, err := Compose(req, testConfig())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if quote.Days != 1 {
		t.Errorf("days = %d, want 1", quote.Days)
	}
	if !strings.Contains(body, "Days: 1") {
		t.Errorf("body should report 1 day:\n%s", body)
	}
}

func TestMailtoLink(t *testing.T) {
	link := MailtoLink("bookings@miracars.gr", "Name: Maria\n")

	if !strings.HasPrefix(link, "mailto:bookings@miracars.gr?") {
		t.Errorf("link = %q, want mailto to admin address", link)
	}
	if strings.Contains(link, "+") {
		t.Errorf("link %q must not use + for spaces", link)
	}
	if !strings.Contains(link, "subject=") || !strings.Contains(link, "body=") {
		t.Errorf("link %q missing subject or body", link)
	}
}
