package settings

// Built-in fallbacks. Every key has a default so a read always yields a
// fully populated record, even against an empty store.

const (
	DefaultPhoneNumber = "+30 694 000 0000"
	DefaultVIPCode     = "MIRA-VIP"
	DefaultVIPGreeting = "Welcome to the MiraCars VIP club! Ask us about member-only rates."
	DefaultAdminEmail  = "bookings@miracars.gr"

	DefaultUseWhatsApp    = true
	DefaultDepositPercent = 30.0
)

func defaultPaymentMethods() []string {
	return []string{"Bank Deposit", "Cash on Pickup", "Card on Pickup", "PayPal"}
}

func defaultCarCategories() map[string]float64 {
	return map[string]float64{
		"Economy":     25,
		"Compact":     30,
		"SUV":         50,
		"Convertible": 65,
		"Van":         70,
	}
}

func defaultExtras() map[string]float64 {
	return map[string]float64{
		"GPS":               5,
		"Child Seat":        4,
		"Additional Driver": 6,
		"Full Insurance":    10,
	}
}
