package pricing

// GenericInstructions is shown when the selected payment method has no
// entry in the instruction table, e.g. after an admin renamed a method.
const GenericInstructions = "We will contact you with payment details to confirm your booking."

// paymentInstructions maps a payment-method label to the prepayment hint
// shown under the quote. Lookup is exact-match only.
var paymentInstructions = map[string]string{
	"Bank Deposit":   "Transfer the deposit to our bank account and send us the receipt; details follow in the confirmation email.",
	"Cash on Pickup": "No prepayment needed. Pay the full amount in cash when you pick up the car.",
	"Card on Pickup": "No prepayment needed. Pay by debit or credit card at the rental desk.",
	"PayPal":         "We will send a PayPal payment request for the deposit to your email address.",
}

// InstructionsFor returns the instruction text for a payment method,
// falling back to GenericInstructions for unknown labels.
func InstructionsFor(method string) string {
	if text, ok := paymentInstructions[method]; ok {
		return text
	}
	return GenericInstructions
}
