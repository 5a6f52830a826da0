package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"miracars-bot/internal/settings"
)

// Field identifies one editable setting. The editor walks the fields in
// declaration order, one prompt per field.
type Field int

const (
	FieldPhone Field = iota
	FieldVIPCode
	FieldVIPGreeting
	FieldPaymentMethods
	FieldCarCategories
	FieldExtras
	FieldDepositPercent
	FieldAdminEmail
	FieldChatChannel

	fieldCount
)

// Fields returns every editable field in edit order.
func Fields() []Field {
	fields := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

func (f Field) Label() string {
	switch f {
	case FieldPhone:
		return "Contact phone"
	case FieldVIPCode:
		return "VIP unlock code"
	case FieldVIPGreeting:
		return "VIP greeting"
	case FieldPaymentMethods:
		return "Payment methods"
	case FieldCarCategories:
		return "Car categories"
	case FieldExtras:
		return "Extras"
	case FieldDepositPercent:
		return "Deposit percent"
	case FieldAdminEmail:
		return "Booking email"
	case FieldChatChannel:
		return "Chat channel"
	default:
		return "unknown"
	}
}

// Editor edits operator settings one field at a time. Each accepted input
// is validated and persisted immediately; an empty or skipped input
// leaves the field untouched. The caller is responsible for gating access
// to logged-in admins and for refreshing derived views afterwards.
type Editor struct {
	store *settings.Store
}

func NewEditor(store *settings.Store) *Editor {
	return &Editor{store: store}
}

// Prompt renders the question for a field, including its current value
// and the expected input format.
func (e *Editor) Prompt(ctx context.Context, f Field) string {
	switch f {
	case FieldPhone:
		return fmt.Sprintf("%s (current: %s)\nSend a new phone number, or - to keep it.",
			f.Label(), e.store.PhoneNumber(ctx))
	case FieldVIPCode:
		return fmt.Sprintf("%s (current: %s)\nSend a new code, or - to keep it.",
			f.Label(), e.store.VIPCode(ctx))
	case FieldVIPGreeting:
		return fmt.Sprintf("%s (current: %s)\nSend a new greeting, or - to keep it.",
			f.Label(), e.store.VIPGreeting(ctx))
	case FieldPaymentMethods:
		return fmt.Sprintf("%s (current: %s)\nSend a comma-separated list, or - to keep it.",
			f.Label(), strings.Join(e.store.PaymentMethods(ctx), ", "))
	case FieldCarCategories:
		return fmt.Sprintf("%s (current: %s)\nSend entries like SUV=50, Economy=25 (price per day), or - to keep them.",
			f.Label(), formatPriceTable(e.store.CarCategories(ctx)))
	case FieldExtras:
		return fmt.Sprintf("%s (current: %s)\nSend entries like GPS=5, Child Seat=4 (price per day), or - to keep them.",
			f.Label(), formatPriceTable(e.store.Extras(ctx)))
	case FieldDepositPercent:
		return fmt.Sprintf("%s (current: %.0f%%)\nSend a number between 0 and 100, or - to keep it.",
			f.Label(), e.store.DepositPercent(ctx))
	case FieldAdminEmail:
		return fmt.Sprintf("%s (current: %s)\nSend a new address, or - to keep it.",
			f.Label(), e.store.AdminEmail(ctx))
	case FieldChatChannel:
		current := "phone"
		if e.store.UseWhatsApp(ctx) {
			current = "whatsapp"
		}
		return fmt.Sprintf("%s (current: %s)\nSend whatsapp or phone, or - to keep it.",
			f.Label(), current)
	default:
		return ""
	}
}

// Apply validates input for a field and persists it. Empty input or a
// lone dash keeps the current value and reports no error.
func (e *Editor) Apply(ctx context.Context, f Field, input string) error {
	input = strings.TrimSpace(input)
	if input == "" || input == "-" {
		return nil
	}

	switch f {
	case FieldPhone:
		return e.store.SetPhoneNumber(ctx, input)
	case FieldVIPCode:
		return e.store.SetVIPCode(ctx, input)
	case FieldVIPGreeting:
		return e.store.SetVIPGreeting(ctx, input)
	case FieldAdminEmail:
		if !strings.Contains(input, "@") {
			return fmt.Errorf("%q does not look like an email address", input)
		}
		return e.store.SetAdminEmail(ctx, input)
	case FieldPaymentMethods:
		return e.store.SetPaymentMethods(ctx, splitList(input))
	case FieldCarCategories:
		table, err := parsePriceTable(input)
		if err != nil {
			return err
		}
		return e.store.SetCarCategories(ctx, table)
	case FieldExtras:
		table, err := parsePriceTable(input)
		if err != nil {
			return err
		}
		return e.store.SetExtras(ctx, table)
	case FieldDepositPercent:
		percent, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", input)
		}
		return e.store.SetDepositPercent(ctx, percent)
	case FieldChatChannel:
		useWhatsApp, err := parseChannel(input)
		if err != nil {
			return err
		}
		return e.store.SetUseWhatsApp(ctx, useWhatsApp)
	default:
		return fmt.Errorf("unknown settings field %d", f)
	}
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePriceTable parses "Name=price, Name=price" into a table. Prices
// must be non-negative decimals, names non-empty after trimming.
func parsePriceTable(input string) (map[string]float64, error) {
	table := make(map[string]float64)
	for _, entry := range strings.Split(input, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, priceStr, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("entry %q must look like Name=price", entry)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("entry %q has an empty name", entry)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
		if err != nil {
			return nil, fmt.Errorf("price %q for %s is not a number", strings.TrimSpace(priceStr), name)
		}
		if price < 0 {
			return nil, fmt.Errorf("price for %s must not be negative", name)
		}
		if _, dup := table[name]; dup {
			return nil, fmt.Errorf("%s is listed twice", name)
		}
		table[name] = price
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("no entries found in %q", input)
	}
	return table, nil
}

func parseChannel(input string) (bool, error) {
	switch strings.ToLower(input) {
	case "whatsapp", "wa", "yes", "true", "on":
		return true, nil
	case "phone", "sms", "no", "false", "off":
		return false, nil
	default:
		return false, fmt.Errorf("send whatsapp or phone, not %q", input)
	}
}

func formatPriceTable(table map[string]float64) string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, strconv.FormatFloat(table[name], 'f', -1, 64)))
	}
	return strings.Join(parts, ", ")
}
