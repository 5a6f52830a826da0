package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"miracars-bot/internal/settings"
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

func newTestManager() *Manager {
	return NewManager(settings.New(newMemoryKV()))
}

const chatID = int64(42)

func TestInitialStateIsNoPasswordSet(t *testing.T) {
	m := newTestManager()
	if got := m.State(context.Background(), chatID); got != StateNoPasswordSet {
		t.Errorf("state = %v, want %v", got, StateNoPasswordSet)
	}
}

func TestSetPasswordTooShort(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	err := m.SetPassword(ctx, chatID, "abc")
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
	if got := m.State(ctx, chatID); got != StateNoPasswordSet {
		t.Errorf("state = %v, want to remain %v", got, StateNoPasswordSet)
	}
}

func TestSetPasswordBootstrapsAndLogsIn(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.SetPassword(ctx, chatID, "abcd"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if got := m.State(ctx, chatID); got != StateLoggedIn {
		t.Errorf("state = %v, want %v", got, StateLoggedIn)
	}

	// A second bootstrap attempt is rejected.
	if err := m.SetPassword(ctx, chatID, "other-password"); !errors.Is(err, ErrPasswordSet) {
		t.Errorf("err = %v, want ErrPasswordSet", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.SetPassword(ctx, chatID, "secret99"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	m.SignOut(chatID)

	err := m.Login(ctx, chatID, "wrong")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if got := m.State(ctx, chatID); got != StateLoggedOut {
		t.Errorf("state = %v, want to remain %v", got, StateLoggedOut)
	}
}

func TestLoginCorrectPassword(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.SetPassword(ctx, chatID, "secret99"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	m.SignOut(chatID)

	if err := m.Login(ctx, chatID, "secret99"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := m.State(ctx, chatID); got != StateLoggedIn {
		t.Errorf("state = %v, want %v", got, StateLoggedIn)
	}
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.SetPassword(ctx, chatID, "secret99"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	m.SignOut(chatID)

	if got := m.State(ctx, chatID); got != StateLoggedOut {
		t.Errorf("state = %v, want %v", got, StateLoggedOut)
	}
}

func TestBiometricLoginNeverSucceeds(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.SetPassword(ctx, chatID, "secret99"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	m.SignOut(chatID)

	if err := m.LoginBiometric(chatID); !errors.Is(err, ErrBiometricUnsupported) {
		t.Fatalf("err = %v, want ErrBiometricUnsupported", err)
	}
	if got := m.State(ctx, chatID); got != StateLoggedOut {
		t.Errorf("state = %v, biometric attempt must not log in", got)
	}
}

func TestSessionsAreIndependentPerChat(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if err := m.SetPassword(ctx, chatID, "secret99"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	other := int64(77)
	if got := m.State(ctx, other); got != StateLoggedOut {
		t.Errorf("other chat state = %v, want %v", got, StateLoggedOut)
	}
}
