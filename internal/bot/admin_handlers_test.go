package bot

import (
	"strings"
	"testing"
	"time"

	"miracars-bot/internal/storage"
)

func TestFormatBookingList(t *testing.T) {
	bookings := []storage.Booking{
		{
			ID:          7,
			Name:        "Maria Papadopoulou",
			Category:    "SUV",
			PickupDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			DropoffDate: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			Total:       165,
			Status:      "new",
		},
		{
			ID:          6,
			Name:        "Nikos K",
			Category:    "Economy",
			PickupDate:  time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
			DropoffDate: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC),
			Total:       25,
			Status:      "completed",
		},
	}

	text := formatBookingList(bookings)
	if !strings.Contains(text, "Last 2 booking(s)") {
		t.Errorf("missing header:\n%s", text)
	}
	if !strings.Contains(text, "#7 Maria Papadopoulou | SUV | 2025-06-01 to 2025-06-04 | 165.00 EUR | new") {
		t.Errorf("missing first booking line:\n%s", text)
	}
	if !strings.Contains(text, "#6 Nikos K | Economy | 2025-05-20 to 2025-05-21 | 25.00 EUR | completed") {
		t.Errorf("missing second booking line:\n%s", text)
	}
}

func TestFormatBookingListEmpty(t *testing.T) {
	if text := formatBookingList(nil); !strings.Contains(text, "No bookings yet") {
		t.Errorf("empty list text = %q", text)
	}
}
