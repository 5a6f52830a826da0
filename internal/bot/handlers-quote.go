package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"miracars-bot/internal/booking"
	"miracars-bot/internal/pricing"
	"miracars-bot/internal/storage"
)

const dateLayout = "2006-01-02"

func (b *Bot) startQuoteFlow(ctx context.Context, chatID int64) {
	err := b.state.Update(ctx, chatID, func(state *UserState) {
		*state = UserState{Step: StepPickupDate}
	})
	if err != nil {
		b.logger.Error("Failed to reset quote state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "📅 When do you want to pick up the car?\nSend a date like 2025-06-01.")
	msg.ReplyMarkup = b.createDateKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handlePickupDate(ctx context.Context, chatID int64, text string) {
	date, ok := parseInputDate(text)
	if !ok {
		b.sendError(chatID, "I could not read that date. Send it like 2025-06-01.")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Pickup = date.Format(dateLayout)
		state.Step = StepDropoffDate
	}); err != nil {
		b.logger.Error("Failed to save pickup date",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "📅 And when will you drop it off?")
	msg.ReplyMarkup = b.createDateKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleDropoffDate(ctx context.Context, chatID int64, text string) {
	date, ok := parseInputDate(text)
	if !ok {
		b.sendError(chatID, "I could not read that date. Send it like 2025-06-04.")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Dropoff = date.Format(dateLayout)
		state.Step = StepCategory
	}); err != nil {
		b.logger.Error("Failed to save dropoff date",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	categories := b.settings.CarCategories(ctx)
	msg := tgbotapi.NewMessage(chatID, "🚗 Pick a vehicle category:\n"+formatPricePerDayList(categories))
	msg.ReplyMarkup = createNameKeyboard(sortedNames(categories))
	b.sendMessage(msg)
}

func (b *Bot) handleCategory(ctx context.Context, chatID int64, text string) {
	categories := b.settings.CarCategories(ctx)
	if _, ok := categories[text]; !ok {
		b.sendError(chatID, "Please pick one of the listed categories.")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Category = text
		state.Extras = nil
		state.Step = StepExtras
	}); err != nil {
		b.logger.Error("Failed to save category",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendLiveQuote(ctx, chatID)

	extras := b.settings.Extras(ctx)
	msg := tgbotapi.NewMessage(chatID, "🧰 Any extras? Tap to toggle, then press "+buttonDone+".\n"+formatPricePerDayList(extras))
	msg.ReplyMarkup = createNameKeyboard(append(sortedNames(extras), buttonDone))
	b.sendMessage(msg)
}

func (b *Bot) handleExtras(ctx context.Context, chatID int64, text string) {
	if text == buttonDone {
		methods := b.settings.PaymentMethods(ctx)
		msg := tgbotapi.NewMessage(chatID, "💳 How would you like to pay?")
		msg.ReplyMarkup = createNameKeyboard(append(methods, buttonSkip))
		b.sendMessage(msg)

		if err := b.state.SetStep(ctx, chatID, StepPayment); err != nil {
			b.logger.Error("Failed to set payment step",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
		return
	}

	extras := b.settings.Extras(ctx)
	if _, ok := extras[text]; !ok {
		b.sendError(chatID, "Please pick one of the listed extras, or press "+buttonDone+".")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Extras = toggleName(state.Extras, text)
	}); err != nil {
		b.logger.Error("Failed to toggle extra",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendLiveQuote(ctx, chatID)
}

func (b *Bot) handlePayment(ctx context.Context, chatID int64, text string) {
	method := text
	if text == buttonSkip {
		method = ""
	} else if !containsName(b.settings.PaymentMethods(ctx), text) {
		b.sendError(chatID, "Please pick one of the listed payment methods, or press "+buttonSkip+".")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.PaymentMethod = method
		state.Step = StepName
	}); err != nil {
		b.logger.Error("Failed to save payment method",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendLiveQuote(ctx, chatID)

	msg := tgbotapi.NewMessage(chatID, "🙋 What is your full name?")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
}

func (b *Bot) handleName(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		b.sendError(chatID, "Please send your full name.")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Name = strings.TrimSpace(text)
		state.Step = StepEmail
	}); err != nil {
		b.logger.Error("Failed to save name",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendText(chatID, "📧 And your email address?")
}

func (b *Bot) handleEmail(ctx context.Context, chatID int64, text string) {
	if !IsValidEmail(text) {
		b.sendError(chatID, "That does not look like an email address, please try again.")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Email = strings.TrimSpace(text)
		state.Step = StepPhone
	}); err != nil {
		b.logger.Error("Failed to save email",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "📱 Your phone number?")
	msg.ReplyMarkup = b.createContactKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handlePhone(ctx context.Context, chatID int64, text string) {
	if !IsValidPhoneNumber(text) {
		b.sendError(chatID, "That phone number does not look right, please try again.")
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Phone = NormalizePhoneNumber(text)
		state.Step = StepNotes
	}); err != nil {
		b.logger.Error("Failed to save phone",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "📝 Anything else we should know? Send a note, or press "+buttonSkip+".")
	msg.ReplyMarkup = createNameKeyboard([]string{buttonSkip})
	b.sendMessage(msg)
}

func (b *Bot) handleNotes(ctx context.Context, chatID int64, text string) {
	notes := strings.TrimSpace(text)
	if text == buttonSkip {
		notes = ""
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Notes = notes
		state.Step = StepConfirm
	}); err != nil {
		b.logger.Error("Failed to save notes",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	req := quoteRequestFromState(state)
	quote, qerr := pricing.ComputeQuote(req, b.settings.Record(ctx))
	if qerr != nil {
		b.sendError(chatID, qerr.Error())
		return
	}

	summary := fmt.Sprintf("Please review your booking:\n\n%s\n%s",
		formatBookingSummary(state), formatQuote(quote))
	msg := tgbotapi.NewMessage(chatID, summary)
	msg.ReplyMarkup = b.createConfirmKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64, text string) {
	switch text {
	case buttonConfirm:
		b.submitBooking(ctx, chatID)
	case buttonStartOver:
		b.startQuoteFlow(ctx, chatID)
	default:
		b.sendError(chatID, "Press "+buttonConfirm+" to book, or "+buttonStartOver+" to start over.")
	}
}

func (b *Bot) submitBooking(ctx context.Context, chatID int64) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	}

	req := bookingRequestFromState(state)
	cfg := b.settings.Record(ctx)

	quote, body, err := booking.Compose(req, cfg)
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			b.sendError(chatID, verr.Prompt)
			return
		}
		b.logger.Error("Failed to compose booking",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Could not prepare your booking, please try again.")
		return
	}

	record := storage.Booking{
		ChatID:        chatID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Category:      req.Category,
		Extras:        strings.Join(req.Extras, ", "),
		PickupDate:    req.Pickup,
		DropoffDate:   req.Dropoff,
		Days:          quote.Days,
		BasePrice:     quote.BasePrice,
		ExtrasPrice:   quote.ExtrasPrice,
		Total:         quote.Total,
		Deposit:       quote.Deposit,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Status:        "new",
		CreatedAt:     time.Now().UTC(),
	}

	bookingID, err := b.storage.SaveBooking(ctx, record)
	if err != nil {
		b.logger.Error("Failed to save booking",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Could not save your booking, please try again.")
		return
	}
	record.ID = bookingID

	b.notifyNewBooking(ctx, record)

	confirmation := fmt.Sprintf("✅ Booking request #%d received!\n\n%s", bookingID, formatQuote(quote))
	if quote.PaymentInstructions != "" {
		confirmation += "\n" + quote.PaymentInstructions
	}
	confirmation += "\n\nYou can also email us the details directly:\n" +
		booking.MailtoLink(cfg.AdminEmail, body)

	msg := tgbotapi.NewMessage(chatID, confirmation)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)

	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// sendLiveQuote re-renders the price preview from the current dialog
// state. Incomplete state is fine: the validation prompt is simply shown
// instead of a breakdown.
func (b *Bot) sendLiveQuote(ctx context.Context, chatID int64) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	quote, err := pricing.ComputeQuote(quoteRequestFromState(state), b.settings.Record(ctx))
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			b.sendText(chatID, "💶 "+verr.Prompt)
			return
		}
		b.logger.Error("Failed to compute quote",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendText(chatID, formatQuote(quote))
}

func quoteRequestFromState(state UserState) pricing.Request {
	pickup, _ := time.Parse(dateLayout, state.Pickup)
	dropoff, _ := time.Parse(dateLayout, state.Dropoff)
	return pricing.Request{
		Pickup:        pickup,
		Dropoff:       dropoff,
		Category:      state.Category,
		Extras:        state.Extras,
		PaymentMethod: state.PaymentMethod,
	}
}

func bookingRequestFromState(state UserState) booking.Request {
	pickup, _ := time.Parse(dateLayout, state.Pickup)
	dropoff, _ := time.Parse(dateLayout, state.Dropoff)
	return booking.Request{
		Name:          state.Name,
		Email:         state.Email,
		Phone:         state.Phone,
		Category:      state.Category,
		Extras:        state.Extras,
		Pickup:        pickup,
		Dropoff:       dropoff,
		PaymentMethod: state.PaymentMethod,
		Notes:         state.Notes,
	}
}

func formatQuote(q *pricing.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💶 Quote for %d day(s)\n", q.Days)
	fmt.Fprintf(&b, "Base: %s EUR\n", pricing.FormatMoney(q.BasePrice))
	if q.ExtrasPrice > 0 {
		fmt.Fprintf(&b, "Extras: %s EUR\n", pricing.FormatMoney(q.ExtrasPrice))
	}
	fmt.Fprintf(&b, "Total: %s EUR", pricing.FormatMoney(q.Total))
	if q.Deposit > 0 {
		fmt.Fprintf(&b, "\nDeposit due now: %s EUR", pricing.FormatMoney(q.Deposit))
	}
	return b.String()
}

func formatBookingSummary(state UserState) string {
	extras := "none"
	if len(state.Extras) > 0 {
		extras = strings.Join(state.Extras, ", ")
	}
	payment := state.PaymentMethod
	if payment == "" {
		payment = "not selected"
	}
	return fmt.Sprintf("%s, %s, %s\nDates: %s to %s\nCategory: %s\nExtras: %s\nPayment: %s",
		state.Name, state.Email, state.Phone,
		state.Pickup, state.Dropoff,
		state.Category, extras, payment)
}

func parseInputDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	switch text {
	case buttonToday:
		return startOfDay(time.Now()), true
	case buttonTomorrow:
		return startOfDay(time.Now()).AddDate(0, 0, 1), true
	}

	for _, layout := range []string{dateLayout, "02.01.2006", "02/01/2006"} {
		if date, err := time.Parse(layout, text); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// startOfDay drops the clock part in the local zone. Truncating against
// the UTC epoch would shift the calendar date for evening users east of
// UTC.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func formatPricePerDayList(table map[string]float64) string {
	names := sortedNames(table)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s EUR/day", name, pricing.FormatMoney(table[name])))
	}
	return strings.Join(parts, "\n")
}

func sortedNames(table map[string]float64) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toggleName(list []string, name string) []string {
	for i, existing := range list {
		if existing == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, name)
}

func containsName(list []string, name string) bool {
	for _, existing := range list {
		if existing == name {
			return true
		}
	}
	return false
}
