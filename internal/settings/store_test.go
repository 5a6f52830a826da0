package settings

import (
	"context"
	"reflect"
	"testing"
	"time"

	"miracars-bot/pkg/redis"
)

type memoryKV struct {
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	return data, nil
}

func (m *memoryKV) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.data[key] = data
	return nil
}

func TestStoreDefaultsOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := New(newMemoryKV())

	rec := store.Record(ctx)

	if rec.PhoneNumber != DefaultPhoneNumber {
		t.Errorf("phone number = %q, want default %q", rec.PhoneNumber, DefaultPhoneNumber)
	}
	if rec.DepositPercent != DefaultDepositPercent {
		t.Errorf("deposit percent = %v, want %v", rec.DepositPercent, DefaultDepositPercent)
	}
	if len(rec.CarCategories) == 0 {
		t.Error("expected default car categories, got none")
	}
	if len(rec.PaymentMethods) == 0 {
		t.Error("expected default payment methods, got none")
	}
	if rec.VIPUnlocked {
		t.Error("VIP flag should default to false")
	}
	if rec.CookiesAccepted {
		t.Error("cookie consent should default to false")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(newMemoryKV())

	if err := store.SetPhoneNumber(ctx, "+30 697 123 4567"); err != nil {
		t.Fatalf("SetPhoneNumber: %v", err)
	}
	if got := store.PhoneNumber(ctx); got != "+30 697 123 4567" {
		t.Errorf("phone number = %q", got)
	}

	if err := store.SetUseWhatsApp(ctx, false); err != nil {
		t.Fatalf("SetUseWhatsApp: %v", err)
	}
	if store.UseWhatsApp(ctx) {
		t.Error("UseWhatsApp should be false after write")
	}

	methods := []string{"Card on Pickup", "Bank Deposit", "Cash on Pickup"}
	if err := store.SetPaymentMethods(ctx, methods); err != nil {
		t.Fatalf("SetPaymentMethods: %v", err)
	}
	if got := store.PaymentMethods(ctx); !reflect.DeepEqual(got, methods) {
		t.Errorf("payment methods = %v, want order preserved %v", got, methods)
	}

	categories := map[string]float64{"SUV": 50, "Economy": 22.5}
	if err := store.SetCarCategories(ctx, categories); err != nil {
		t.Fatalf("SetCarCategories: %v", err)
	}
	if got := store.CarCategories(ctx); !reflect.DeepEqual(got, categories) {
		t.Errorf("car categories = %v, want %v", got, categories)
	}

	if err := store.SetDepositPercent(ctx, 45); err != nil {
		t.Fatalf("SetDepositPercent: %v", err)
	}
	if got := store.DepositPercent(ctx); got != 45 {
		t.Errorf("deposit percent = %v, want 45", got)
	}
}

func TestStoreDepositPercentClamped(t *testing.T) {
	ctx := context.Background()
	store := New(newMemoryKV())

	if err := store.SetDepositPercent(ctx, 150); err != nil {
		t.Fatalf("SetDepositPercent: %v", err)
	}
	if got := store.DepositPercent(ctx); got != 100 {
		t.Errorf("deposit percent = %v, want clamped to 100", got)
	}

	if err := store.SetDepositPercent(ctx, -10); err != nil {
		t.Fatalf("SetDepositPercent: %v", err)
	}
	if got := store.DepositPercent(ctx); got != 0 {
		t.Errorf("deposit percent = %v, want clamped to 0", got)
	}
}

func TestStorePriceTableValidation(t *testing.T) {
	ctx := context.Background()
	store := New(newMemoryKV())

	if err := store.SetExtras(ctx, map[string]float64{"GPS": -1}); err == nil {
		t.Error("expected error for negative extra price")
	}

	// Blank names are dropped, the valid entry survives.
	if err := store.SetExtras(ctx, map[string]float64{"  ": 3, "GPS": 5}); err != nil {
		t.Fatalf("SetExtras: %v", err)
	}
	got := store.Extras(ctx)
	if len(got) != 1 || got["GPS"] != 5 {
		t.Errorf("extras = %v, want only GPS=5", got)
	}
}

func TestStoreLookupFallsBackToRawString(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	store := New(kv)

	// Simulate a corrupted entry that is not valid JSON.
	kv.data[KeyCarCategories] = []byte("{not json")

	got := store.Lookup(ctx, KeyCarCategories)
	if got != "{not json" {
		t.Errorf("Lookup = %v, want raw string fallback", got)
	}

	// Typed accessor degrades to defaults instead of erroring.
	if cats := store.CarCategories(ctx); len(cats) == 0 {
		t.Error("expected default categories for corrupted entry")
	}

	if store.Lookup(ctx, "missing") != nil {
		t.Error("Lookup of a missing key should return nil")
	}
}

func TestStoreVIPFlagPersists(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()

	store := New(kv)
	if err := store.SetVIPUnlocked(ctx, true); err != nil {
		t.Fatalf("SetVIPUnlocked: %v", err)
	}

	// A fresh store over the same backend still sees the unlock.
	if !New(kv).VIPUnlocked(ctx) {
		t.Error("VIP unlock should survive a fresh store instance")
	}
}
