package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"miracars-bot/internal/storage"
)

// notifyNewBooking fans the booking out to every configured admin chat
// and, when set, the operator channel. Failures are logged, never
// surfaced to the customer.
func (b *Bot) notifyNewBooking(ctx context.Context, bkg storage.Booking) {
	for _, adminID := range b.cfg.AdminIDs {
		if adminID != 0 {
			b.sendAdminNotification(ctx, adminID, bkg)
		}
	}

	if b.cfg.AdminChannelID == 0 {
		b.logger.Debug("Channel notifications disabled - no channel ID configured")
		return
	}

	text := fmt.Sprintf(
		"📦 New booking #%d\n"+
			"%s, %s to %s (%d days)\n"+
			"Total: %.2f EUR\n"+
			"Contact: %s",
		bkg.ID, bkg.Category, bkg.PickupDate.Format("2006-01-02"),
		bkg.DropoffDate.Format("2006-01-02"), bkg.Days,
		bkg.Total, bkg.Phone,
	)
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.cfg.AdminChannelID, text)); err != nil {
		b.logger.Error("Failed to send channel notification",
			zap.Int64("booking_id", bkg.ID),
			zap.Error(err))
	}
}

func (b *Bot) sendAdminNotification(ctx context.Context, chatID int64, bkg storage.Booking) {
	msg := tgbotapi.NewMessage(chatID, formatBookingNotification(bkg))
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send booking notification",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	path, err := b.storage.ExportBookingToExcel(ctx, bkg)
	if err != nil {
		b.logger.Error("Failed to create Excel file for booking",
			zap.Int64("booking_id", bkg.ID),
			zap.Error(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("📊 Booking #%d", bkg.ID)
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send Excel file to admin",
			zap.Int64("booking_id", bkg.ID),
			zap.Error(err))
	}
}

func formatBookingNotification(bkg storage.Booking) string {
	extras := bkg.Extras
	if extras == "" {
		extras = "none"
	}
	payment := bkg.PaymentMethod
	if payment == "" {
		payment = "not selected"
	}
	text := fmt.Sprintf(
		"📦 New booking #%d\n\n"+
			"Customer: %s\n"+
			"Email: %s\n"+
			"Phone: %s\n"+
			"──────────────────\n"+
			"Category: %s\n"+
			"Extras: %s\n"+
			"Dates: %s to %s (%d days)\n"+
			"──────────────────\n"+
			"Base: %.2f EUR\n"+
			"Extras: %.2f EUR\n"+
			"Total: %.2f EUR\n"+
			"Deposit: %.2f EUR\n"+
			"Payment: %s\n"+
			"Status: %s",
		bkg.ID,
		bkg.Name, bkg.Email, bkg.Phone,
		bkg.Category, extras,
		bkg.PickupDate.Format("2006-01-02"), bkg.DropoffDate.Format("2006-01-02"), bkg.Days,
		bkg.BasePrice, bkg.ExtrasPrice, bkg.Total, bkg.Deposit,
		payment, bkg.Status,
	)
	if bkg.Notes != "" {
		text += "\nNotes: " + bkg.Notes
	}
	return text
}
