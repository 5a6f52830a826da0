package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"miracars-bot/pkg/redis"
)

const (
	StepCookieConsent = "cookie_consent"
	StepPickupDate    = "pickup_date"
	StepDropoffDate   = "dropoff_date"
	StepCategory      = "category"
	StepExtras        = "extras"
	StepPayment       = "payment"
	StepName          = "name"
	StepEmail         = "email"
	StepPhone         = "phone"
	StepNotes         = "notes"
	StepConfirm       = "confirm"

	StepVIPCode = "vip_code"

	StepAdminNewPassword = "admin_new_password"
	StepAdminPassword    = "admin_password"
	StepAdminEdit        = "admin_edit"
)

// UserState is the per-chat dialog state: the quote inputs collected so
// far plus the position in the admin settings editor.
type UserState struct {
	Step          string   `json:"step"`
	Pickup        string   `json:"pickup,omitempty"`
	Dropoff       string   `json:"dropoff,omitempty"`
	Category      string   `json:"category,omitempty"`
	Extras        []string `json:"extras,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	EditField     int      `json:"edit_field,omitempty"`
}

type StateStorage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStateStorage(client *redis.Client, ttl time.Duration) *StateStorage {
	return &StateStorage{
		redis: client,
		ttl:   ttl,
	}
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, state UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.redis.Set(ctx, dialogStateKey(chatID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Get returns the dialog state for a chat, or a zero state when none is
// stored yet.
func (s *StateStorage) Get(ctx context.Context, chatID int64) (UserState, error) {
	data, err := s.redis.Get(ctx, dialogStateKey(chatID))
	if errors.Is(err, redis.ErrNotFound) {
		return UserState{}, nil
	}
	if err != nil {
		return UserState{}, fmt.Errorf("failed to get state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return UserState{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.redis.Del(ctx, dialogStateKey(chatID)); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func (s *StateStorage) SetStep(ctx context.Context, chatID int64, step string) error {
	return s.Update(ctx, chatID, func(state *UserState) {
		state.Step = step
	})
}

// Update applies a mutation to the stored dialog state and saves it back.
func (s *StateStorage) Update(ctx context.Context, chatID int64, mutate func(*UserState)) error {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		state = UserState{}
	}
	mutate(&state)
	return s.Save(ctx, chatID, state)
}

func dialogStateKey(chatID int64) string {
	return fmt.Sprintf("dialog:%d", chatID)
}
