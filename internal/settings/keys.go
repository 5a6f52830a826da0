package settings

// Persisted configuration keys. All values except KeyAdminPassword,
// KeyVIPUnlocked and KeyCookiesAccepted are stored JSON-encoded; those
// three are raw strings/flags.
const (
	KeyPhoneNumber     = "phoneNumber"
	KeyVIPCode         = "vipCode"
	KeyVIPGreeting     = "vipGreeting"
	KeyUseWhatsApp     = "useWhatsApp"
	KeyPaymentMethods  = "paymentMethods"
	KeyCarCategories   = "carCategories"
	KeyExtras          = "extras"
	KeyDepositPercent  = "depositPercent"
	KeyAdminEmail      = "adminEmail"
	KeyAdminPassword   = "adminPassword"
	KeyVIPUnlocked     = "isVIP"
	KeyCookiesAccepted = "cookiesAccepted"
)

// Keys lists every persisted configuration key in display order.
var Keys = []string{
	KeyPhoneNumber,
	KeyVIPCode,
	KeyVIPGreeting,
	KeyUseWhatsApp,
	KeyPaymentMethods,
	KeyCarCategories,
	KeyExtras,
	KeyDepositPercent,
	KeyAdminEmail,
	KeyAdminPassword,
	KeyVIPUnlocked,
	KeyCookiesAccepted,
}
