package booking

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"miracars-bot/internal/pricing"
	"miracars-bot/internal/settings"
)

// Subject is the fixed subject line of every booking notification email.
const Subject = "New MiraCars booking request"

const dateLayout = "2006-01-02"

// Request is a booking submission: the quote inputs plus the customer's
// identity and free-text notes.
type Request struct {
	Name          string
	Email         string
	Phone         string
	Category      string
	Extras        []string
	Pickup        time.Time
	Dropoff       time.Time
	PaymentMethod string
	Notes         string
}

// Validate rejects submissions whose identity fields are blank after
// trimming. The browser original let these through; here the gap is
// closed.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &pricing.ValidationError{Prompt: "Please provide your full name."}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &pricing.ValidationError{Prompt: "Please provide your email address."}
	}
	if strings.TrimSpace(r.Phone) == "" {
		return &pricing.ValidationError{Prompt: "Please provide a contact phone number."}
	}
	return nil
}

// Compose validates the request, prices it with the same formulas as the
// live quote, and renders the notification payload.
func Compose(req Request, cfg settings.Record) (*pricing.Quote, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	quote, err := pricing.ComputeQuote(pricing.Request{
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		Category:      req.Category,
		Extras:        req.Extras,
		PaymentMethod: req.PaymentMethod,
	}, cfg)
	if err != nil {
		return nil, "", err
	}

	return quote, composeBody(req, quote), nil
}

// composeBody renders the plain-text line-oriented payload. Line order is
// fixed; optional lines (extras cost, deposit, notes) appear only when
// they carry information.
func composeBody(req Request, q *pricing.Quote) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", strings.TrimSpace(req.Name))
	fmt.Fprintf(&b, "Email: %s\n", strings.TrimSpace(req.Email))
	fmt.Fprintf(&b, "Phone: %s\n", strings.TrimSpace(req.Phone))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	extras := "none"
	if len(req.Extras) > 0 {
		extras = strings.Join(req.Extras, ", ")
	}
	fmt.Fprintf(&b, "Extras: %s\n", extras)
	fmt.Fprintf(&b, "Pickup: %s\n", req.Pickup.Format(dateLayout))
	fmt.Fprintf(&b, "Dropoff: %s\n", req.Dropoff.Format(dateLayout))
	fmt.Fprintf(&b, "Days: %d\n", q.Days)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Base price: %s EUR\n", pricing.FormatMoney(q.BasePrice))
	if q.ExtrasPrice > 0 {
		fmt.Fprintf(&b, "Extras price: %s EUR\n", pricing.FormatMoney(q.ExtrasPrice))
	}
	fmt.Fprintf(&b, "Total: %s EUR\n", pricing.FormatMoney(q.Total))
	if q.Deposit > 0 {
		fmt.Fprintf(&b, "Deposit: %s EUR\n", pricing.FormatMoney(q.Deposit))
	}
	if req.PaymentMethod != "" {
		fmt.Fprintf(&b, "Payment method: %s\n", req.PaymentMethod)
	}

	if notes := strings.TrimSpace(req.Notes); notes != "" {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}

	return b.String()
}

// MailtoLink builds the mail-composition link handed to the customer so
// the booking email opens pre-filled in their mail client.
func MailtoLink(adminEmail, body string) string {
	query := url.Values{}
	query.Set("subject", Subject)
	query.Set("body", body)
	// mailto bodies need %20, not the + form encoding produces.
	encoded := strings.ReplaceAll(query.Encode(), "+", "%20")
	return fmt.Sprintf("mailto:%s?%s", adminEmail, encoded)
}
