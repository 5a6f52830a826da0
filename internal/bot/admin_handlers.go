package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"miracars-bot/internal/admin"
	"miracars-bot/internal/auth"
	"miracars-bot/internal/pricing"
	"miracars-bot/internal/settings"
	"miracars-bot/internal/storage"
)

func (b *Bot) handleAdmin(ctx context.Context, chatID int64) {
	if !b.isAdmin(chatID) {
		b.sendError(chatID, "This area is for operators only.")
		return
	}

	switch b.auth.State(ctx, chatID) {
	case auth.StateNoPasswordSet:
		b.sendText(chatID, "🔐 No admin password is set yet. Choose one (at least 4 characters):")
		if err := b.state.SetStep(ctx, chatID, StepAdminNewPassword); err != nil {
			b.logger.Error("Failed to set new password step",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	case auth.StateLoggedOut:
		msg := tgbotapi.NewMessage(chatID, "🔐 Enter the admin password:")
		msg.ReplyMarkup = b.createAdminLoginKeyboard()
		b.sendMessage(msg)
		if err := b.state.SetStep(ctx, chatID, StepAdminPassword); err != nil {
			b.logger.Error("Failed to set password step",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	case auth.StateLoggedIn:
		b.startSettingsEditor(ctx, chatID)
	}
}

func (b *Bot) handleAdminNewPassword(ctx context.Context, chatID int64, text string) {
	if err := b.auth.SetPassword(ctx, chatID, text); err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			b.sendError(chatID, err.Error())
			return
		}
		b.logger.Error("Failed to set admin password",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Could not set the password, please try again.")
		return
	}

	b.sendText(chatID, "✅ Password set, you are signed in.")
	b.startSettingsEditor(ctx, chatID)
}

func (b *Bot) handleAdminPassword(ctx context.Context, chatID int64, text string) {
	if text == buttonBiometric {
		if err := b.auth.LoginBiometric(chatID); errors.Is(err, auth.ErrBiometricUnsupported) {
			b.sendError(chatID, "Biometric login is not supported here. Enter the admin password instead:")
		}
		return
	}

	if err := b.auth.Login(ctx, chatID, text); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			b.sendError(chatID, "Incorrect password.")
			return
		}
		b.logger.Error("Failed admin login",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Could not sign you in, please try again.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "✅ Signed in.")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
	b.startSettingsEditor(ctx, chatID)
}

// startSettingsEditor begins the sequential field-by-field edit walk.
func (b *Bot) startSettingsEditor(ctx context.Context, chatID int64) {
	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.Step = StepAdminEdit
		state.EditField = 0
	}); err != nil {
		b.logger.Error("Failed to start settings editor",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	b.sendText(chatID, "⚙️ Settings editor. Answer each prompt, or send - to keep the current value. /cancel exits.")
	b.sendText(chatID, b.editor.Prompt(ctx, admin.Fields()[0]))
}

func (b *Bot) handleAdminEdit(ctx context.Context, chatID int64, text string) {
	if !b.auth.IsLoggedIn(chatID) {
		b.sendError(chatID, "You are signed out. Use /admin to sign in again.")
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	fields := admin.Fields()
	if state.EditField < 0 || state.EditField >= len(fields) {
		b.sendError(chatID, "The settings editor lost its place, use /admin to restart.")
		return
	}
	field := fields[state.EditField]

	if err := b.editor.Apply(ctx, field, text); err != nil {
		// Validation failure: re-prompt the same field.
		b.sendError(chatID, err.Error())
		b.sendText(chatID, b.editor.Prompt(ctx, field))
		return
	}

	next := state.EditField + 1
	if next >= len(fields) {
		if err := b.state.SetStep(ctx, chatID, ""); err != nil {
			b.logger.Error("Failed to reset step",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
		b.sendText(chatID, "✅ Settings saved.\n\n"+formatSettingsOverview(b.settings.Record(ctx)))
		return
	}

	if err := b.state.Update(ctx, chatID, func(state *UserState) {
		state.EditField = next
	}); err != nil {
		b.logger.Error("Failed to advance settings editor",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}
	b.sendText(chatID, b.editor.Prompt(ctx, fields[next]))
}

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	if !b.isAdmin(chatID) {
		return
	}
	if !b.auth.IsLoggedIn(chatID) {
		b.sendError(chatID, "Sign in with /admin first.")
		return
	}

	switch cmd {
	case "stats":
		b.handleBookingStats(ctx, chatID)
	case "bookings":
		limit := defaultListLimit
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				b.sendError(chatID, "Usage: /bookings [count]")
				return
			}
			limit = n
		}
		b.handleListBookings(ctx, chatID, limit)
	case "export":
		if len(args) == 0 {
			b.handleExportAllBookings(ctx, chatID)
			return
		}
		bookingID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendError(chatID, "Usage: /export [booking_id]")
			return
		}
		b.handleExportSingleBooking(ctx, chatID, bookingID)
	case "status":
		if len(args) < 2 {
			b.sendError(chatID, "Usage: /status <booking_id> <new|confirmed|completed|cancelled>")
			return
		}
		b.handleStatusUpdate(ctx, chatID, args[0], args[1])
	case "config":
		b.handleConfigDump(ctx, chatID)
	}
}

func (b *Bot) handleStatusUpdate(ctx context.Context, chatID int64, bookingIDStr, newStatus string) {
	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		b.sendError(chatID, "Booking ID must be a number.")
		return
	}

	if err := b.storage.UpdateBookingStatus(ctx, bookingID, newStatus); err != nil {
		b.logger.Error("Failed to update booking status",
			zap.Int64("booking_id", bookingID),
			zap.String("status", newStatus),
			zap.Error(err))
		b.sendError(chatID, "Could not update the booking status.")
		return
	}

	b.sendText(chatID, fmt.Sprintf("✅ Booking #%d is now %s.", bookingID, newStatus))

	// Let the customer know when we can.
	bkg, err := b.storage.GetBookingByID(ctx, bookingID)
	if err == nil && bkg.ChatID != 0 {
		userMsg := tgbotapi.NewMessage(bkg.ChatID, fmt.Sprintf(
			"ℹ️ Your booking #%d is now %s.", bookingID, newStatus))
		if _, err := b.bot.Send(userMsg); err != nil {
			b.logger.Warn("Failed to notify customer about status change",
				zap.Int64("chat_id", bkg.ChatID),
				zap.Error(err))
		}
	}
}

const defaultListLimit = 10

func (b *Bot) handleListBookings(ctx context.Context, chatID int64, limit int) {
	bookings, err := b.storage.ListRecentBookings(ctx, limit)
	if err != nil {
		b.logger.Error("Failed to list bookings", zap.Error(err))
		b.sendError(chatID, "Could not load bookings.")
		return
	}

	b.sendText(chatID, formatBookingList(bookings))
}

func formatBookingList(bookings []storage.Booking) string {
	if len(bookings) == 0 {
		return "📋 No bookings yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Last %d booking(s)\n", len(bookings))
	for _, bkg := range bookings {
		fmt.Fprintf(&sb, "\n#%d %s | %s | %s to %s | %s EUR | %s",
			bkg.ID,
			bkg.Name,
			bkg.Category,
			bkg.PickupDate.Format("2006-01-02"),
			bkg.DropoffDate.Format("2006-01-02"),
			pricing.FormatMoney(bkg.Total),
			bkg.Status,
		)
	}
	return sb.String()
}

func (b *Bot) handleBookingStats(ctx context.Context, chatID int64) {
	stats, err := b.storage.GetBookingStatistics(ctx)
	if err != nil {
		b.logger.Error("Failed to get booking statistics", zap.Error(err))
		b.sendError(chatID, "Could not load statistics.")
		return
	}

	msgText := fmt.Sprintf(
		"📊 Booking statistics\n\n"+
			"Total: %d (%.2f EUR)\n"+
			"Today: %d (%.2f EUR)\n"+
			"Last 7 days: %d (%.2f EUR)\n"+
			"Last 30 days: %d (%.2f EUR)\n\n"+
			"New: %d\n"+
			"Confirmed: %d\n"+
			"Completed: %d\n"+
			"Cancelled: %d",
		stats.TotalBookings, stats.TotalRevenue,
		stats.TodayBookings, stats.TodayRevenue,
		stats.WeekBookings, stats.WeekRevenue,
		stats.MonthBookings, stats.MonthRevenue,
		stats.StatusCounts["new"],
		stats.StatusCounts["confirmed"],
		stats.StatusCounts["completed"],
		stats.StatusCounts["cancelled"],
	)
	b.sendText(chatID, msgText)
}

func (b *Bot) handleExportAllBookings(ctx context.Context, chatID int64) {
	filename := fmt.Sprintf("bookings_report_%s", time.Now().Format("20060102"))
	path, err := b.storage.ExportAllBookingsToExcel(ctx, filename)
	if err != nil {
		b.logger.Error("Failed to export bookings", zap.Error(err))
		b.sendError(chatID, "Could not export bookings.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "📊 All bookings"
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Could not send the exported file.")
	}
}

func (b *Bot) handleExportSingleBooking(ctx context.Context, chatID int64, bookingID int64) {
	bkg, err := b.storage.GetBookingByID(ctx, bookingID)
	if err != nil {
		b.logger.Error("Failed to get booking",
			zap.Int64("booking_id", bookingID),
			zap.Error(err))
		b.sendError(chatID, "Booking not found.")
		return
	}

	path, err := b.storage.ExportBookingToExcel(ctx, *bkg)
	if err != nil {
		b.logger.Error("Failed to export booking",
			zap.Int64("booking_id", bookingID),
			zap.Error(err))
		b.sendError(chatID, "Could not export the booking.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📊 Booking #%d", bookingID)
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Could not send the exported file.")
	}
}

// handleConfigDump shows every stored configuration entry as-is,
// including raw values that no longer decode.
func (b *Bot) handleConfigDump(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("⚙️ Stored configuration\n")
	for _, key := range settings.Keys {
		if key == settings.KeyAdminPassword {
			continue
		}
		value := b.settings.Lookup(ctx, key)
		if value == nil {
			fmt.Fprintf(&sb, "%s: (default)\n", key)
			continue
		}
		fmt.Fprintf(&sb, "%s: %v\n", key, value)
	}
	b.sendText(chatID, sb.String())
}

func formatSettingsOverview(rec settings.Record) string {
	channel := "phone"
	if rec.UseWhatsApp {
		channel = "whatsapp"
	}
	return fmt.Sprintf(
		"Phone: %s\nVIP code: %s\nPayment methods: %s\nCategories: %d\nExtras: %d\nDeposit: %.0f%%\nBooking email: %s\nChannel: %s",
		rec.PhoneNumber,
		rec.VIPCode,
		strings.Join(rec.PaymentMethods, ", "),
		len(rec.CarCategories),
		len(rec.Extras),
		rec.DepositPercent,
		rec.AdminEmail,
		channel,
	)
}
