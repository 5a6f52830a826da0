package bot

import "testing"

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+30 697 000 1111", "+306970001111"},
		{"697-000-1111", "6970001111"},
		{"(697) 000 1111", "6970001111"},
	}

	for _, tt := range tests {
		if got := NormalizePhoneNumber(tt.in); got != tt.want {
			t.Errorf("NormalizePhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"+30 697 000 1111", "6970001234", "0030 697 000 1234"}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}

	invalid := []string{"123", "", "1234567890", "12345678901234567890"}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"maria@example.com", "a@b.co"}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{"", "no-at-sign", "@example.com", "user@", "user@nodot", "two words@example.com"}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}
