package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"

	"miracars-bot/internal/settings"
)

// State of the admin session for one chat.
type State int

const (
	// StateNoPasswordSet means no admin password was ever persisted; the
	// next password submission bootstraps the account.
	StateNoPasswordSet State = iota
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateNoPasswordSet:
		return "no_password_set"
	case StateLoggedOut:
		return "logged_out"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

const minPasswordLength = 4

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrWrongPassword    = errors.New("incorrect password")
	ErrPasswordSet      = errors.New("an admin password is already set")
	ErrNoPasswordSet    = errors.New("no admin password has been set yet")

	// ErrBiometricUnsupported is deliberate: there is no hardware-backed
	// ceremony here, so a biometric attempt must never succeed.
	ErrBiometricUnsupported = errors.New("biometric login is not supported")
)

// Manager runs the admin authentication state machine. The password hash
// is persisted in the settings store; the logged-in flag is session
// scoped, held in memory per chat and lost on restart.
type Manager struct {
	store *settings.Store

	mu       sync.Mutex
	sessions map[int64]bool
}

func NewManager(store *settings.Store) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[int64]bool),
	}
}

// State reports the current auth state for a chat.
func (m *Manager) State(ctx context.Context, chatID int64) State {
	if m.store.PasswordHash(ctx) == "" {
		return StateNoPasswordSet
	}
	if m.IsLoggedIn(chatID) {
		return StateLoggedIn
	}
	return StateLoggedOut
}

// SetPassword bootstraps the admin account from StateNoPasswordSet and
// transitions the chat straight to StateLoggedIn. Passwords shorter than
// four characters are rejected and the state is left untouched.
func (m *Manager) SetPassword(ctx context.Context, chatID int64, password string) error {
	if m.store.PasswordHash(ctx) != "" {
		return ErrPasswordSet
	}

	password = strings.TrimSpace(password)
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := m.store.SetPasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("failed to persist password: %w", err)
	}

	m.setLoggedIn(chatID, true)
	return nil
}

// Login transitions StateLoggedOut to StateLoggedIn on a password match.
// A mismatch returns ErrWrongPassword and leaves the chat logged out.
func (m *Manager) Login(ctx context.Context, chatID int64, password string) error {
	hash := m.store.PasswordHash(ctx)
	if hash == "" {
		return ErrNoPasswordSet
	}

	match, err := argon2id.ComparePasswordAndHash(strings.TrimSpace(password), hash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return ErrWrongPassword
	}

	m.setLoggedIn(chatID, true)
	return nil
}

// LoginBiometric always fails. The browser original simulated an
// unconditional pass; that bypass is not carried forward.
func (m *Manager) LoginBiometric(chatID int64) error {
	return ErrBiometricUnsupported
}

// SignOut transitions the chat back to StateLoggedOut.
func (m *Manager) SignOut(chatID int64) {
	m.setLoggedIn(chatID, false)
}

func (m *Manager) IsLoggedIn(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[chatID]
}

func (m *Manager) setLoggedIn(chatID int64, loggedIn bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loggedIn {
		m.sessions[chatID] = true
	} else {
		delete(m.sessions, chatID)
	}
}
