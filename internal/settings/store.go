package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"miracars-bot/pkg/redis"
)

// KV is the key-value backend the store persists into. Values are durable
// until overwritten; a zero-TTL write never expires.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

var _ KV = (*redis.Client)(nil)

// Record is the fully populated operator configuration.
type Record struct {
	PhoneNumber     string             `json:"phone_number"`
	VIPCode         string             `json:"vip_code"`
	VIPGreeting     string             `json:"vip_greeting"`
	UseWhatsApp     bool               `json:"use_whatsapp"`
	PaymentMethods  []string           `json:"payment_methods"`
	CarCategories   map[string]float64 `json:"car_categories"`
	Extras          map[string]float64 `json:"extras"`
	DepositPercent  float64            `json:"deposit_percent"`
	AdminEmail      string             `json:"admin_email"`
	CookiesAccepted bool               `json:"cookies_accepted"`
	VIPUnlocked     bool               `json:"vip_unlocked"`
}

// Store persists operator configuration as individual key-value entries.
// JSON-encoded values round-trip exactly; a stored value that fails to
// decode is surfaced as its raw string rather than an error, so a caller
// always gets something usable back.
type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// getJSON decodes the stored value into out. It reports false when the key
// is absent or the stored bytes do not decode, leaving out untouched.
func (s *Store) getJSON(ctx context.Context, key string, out any) bool {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *Store) setRaw(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, []byte(value), 0); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) getRaw(ctx context.Context, key string) (string, bool) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Lookup returns the decoded value for key, the raw stored string when the
// value does not decode as JSON, or nil when nothing is stored. It never
// fails; malformed entries degrade to their raw form.
func (s *Store) Lookup(ctx context.Context, key string) any {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return string(data)
	}
	return value
}

func (s *Store) PhoneNumber(ctx context.Context) string {
	var v string
	if s.getJSON(ctx, KeyPhoneNumber, &v) && v != "" {
		return v
	}
	return DefaultPhoneNumber
}

func (s *Store) SetPhoneNumber(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = DefaultPhoneNumber
	}
	return s.setJSON(ctx, KeyPhoneNumber, phone)
}

func (s *Store) VIPCode(ctx context.Context) string {
	var v string
	if s.getJSON(ctx, KeyVIPCode, &v) && v != "" {
		return v
	}
	return DefaultVIPCode
}

func (s *Store) SetVIPCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		code = DefaultVIPCode
	}
	return s.setJSON(ctx, KeyVIPCode, code)
}

func (s *Store) VIPGreeting(ctx context.Context) string {
	var v string
	if s.getJSON(ctx, KeyVIPGreeting, &v) && v != "" {
		return v
	}
	return DefaultVIPGreeting
}

func (s *Store) SetVIPGreeting(ctx context.Context, greeting string) error {
	greeting = strings.TrimSpace(greeting)
	if greeting == "" {
		greeting = DefaultVIPGreeting
	}
	return s.setJSON(ctx, KeyVIPGreeting, greeting)
}

func (s *Store) UseWhatsApp(ctx context.Context) bool {
	var v bool
	if s.getJSON(ctx, KeyUseWhatsApp, &v) {
		return v
	}
	return DefaultUseWhatsApp
}

func (s *Store) SetUseWhatsApp(ctx context.Context, useWhatsApp bool) error {
	return s.setJSON(ctx, KeyUseWhatsApp, useWhatsApp)
}

func (s *Store) PaymentMethods(ctx context.Context) []string {
	var v []string
	if s.getJSON(ctx, KeyPaymentMethods, &v) && len(v) > 0 {
		return v
	}
	return defaultPaymentMethods()
}

// SetPaymentMethods persists the list preserving order. Blank entries are
// dropped; an empty result falls back to the defaults.
func (s *Store) SetPaymentMethods(ctx context.Context, methods []string) error {
	cleaned := make([]string, 0, len(methods))
	for _, m := range methods {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		cleaned = defaultPaymentMethods()
	}
	return s.setJSON(ctx, KeyPaymentMethods, cleaned)
}

func (s *Store) CarCategories(ctx context.Context) map[string]float64 {
	var v map[string]float64
	if s.getJSON(ctx, KeyCarCategories, &v) && len(v) > 0 {
		return v
	}
	return defaultCarCategories()
}

// SetCarCategories persists category -> price per day. Blank names are
// dropped, negative prices rejected.
func (s *Store) SetCarCategories(ctx context.Context, categories map[string]float64) error {
	cleaned, err := cleanPriceTable("category", categories)
	if err != nil {
		return err
	}
	if len(cleaned) == 0 {
		cleaned = defaultCarCategories()
	}
	return s.setJSON(ctx, KeyCarCategories, cleaned)
}

func (s *Store) Extras(ctx context.Context) map[string]float64 {
	var v map[string]float64
	if s.getJSON(ctx, KeyExtras, &v) && len(v) > 0 {
		return v
	}
	return defaultExtras()
}

func (s *Store) SetExtras(ctx context.Context, extras map[string]float64) error {
	cleaned, err := cleanPriceTable("extra", extras)
	if err != nil {
		return err
	}
	if len(cleaned) == 0 {
		cleaned = defaultExtras()
	}
	return s.setJSON(ctx, KeyExtras, cleaned)
}

func (s *Store) DepositPercent(ctx context.Context) float64 {
	var v float64
	if s.getJSON(ctx, KeyDepositPercent, &v) {
		return clampPercent(v)
	}
	return DefaultDepositPercent
}

// SetDepositPercent clamps the value into [0,100] before persisting.
func (s *Store) SetDepositPercent(ctx context.Context, percent float64) error {
	return s.setJSON(ctx, KeyDepositPercent, clampPercent(percent))
}

func (s *Store) AdminEmail(ctx context.Context) string {
	var v string
	if s.getJSON(ctx, KeyAdminEmail, &v) && v != "" {
		return v
	}
	return DefaultAdminEmail
}

func (s *Store) SetAdminEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultAdminEmail
	}
	return s.setJSON(ctx, KeyAdminEmail, email)
}

// PasswordHash returns the stored admin password hash, or "" when no
// password has ever been set.
func (s *Store) PasswordHash(ctx context.Context) string {
	v, _ := s.getRaw(ctx, KeyAdminPassword)
	return v
}

func (s *Store) SetPasswordHash(ctx context.Context, hash string) error {
	return s.setRaw(ctx, KeyAdminPassword, hash)
}

func (s *Store) VIPUnlocked(ctx context.Context) bool {
	v, ok := s.getRaw(ctx, KeyVIPUnlocked)
	return ok && v == "true"
}

func (s *Store) SetVIPUnlocked(ctx context.Context, unlocked bool) error {
	return s.setRaw(ctx, KeyVIPUnlocked, fmt.Sprintf("%t", unlocked))
}

func (s *Store) CookiesAccepted(ctx context.Context) bool {
	v, ok := s.getRaw(ctx, KeyCookiesAccepted)
	return ok && v == "true"
}

func (s *Store) SetCookiesAccepted(ctx context.Context, accepted bool) error {
	return s.setRaw(ctx, KeyCookiesAccepted, fmt.Sprintf("%t", accepted))
}

// Record assembles the full configuration, defaults applied per key.
func (s *Store) Record(ctx context.Context) Record {
	return Record{
		PhoneNumber:     s.PhoneNumber(ctx),
		VIPCode:         s.VIPCode(ctx),
		VIPGreeting:     s.VIPGreeting(ctx),
		UseWhatsApp:     s.UseWhatsApp(ctx),
		PaymentMethods:  s.PaymentMethods(ctx),
		CarCategories:   s.CarCategories(ctx),
		Extras:          s.Extras(ctx),
		DepositPercent:  s.DepositPercent(ctx),
		AdminEmail:      s.AdminEmail(ctx),
		CookiesAccepted: s.CookiesAccepted(ctx),
		VIPUnlocked:     s.VIPUnlocked(ctx),
	}
}

func cleanPriceTable(kind string, table map[string]float64) (map[string]float64, error) {
	cleaned := make(map[string]float64, len(table))
	for name, price := range table {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if price < 0 {
			return nil, fmt.Errorf("%s %q has a negative price: %.2f", kind, name, price)
		}
		cleaned[name] = price
	}
	return cleaned, nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
