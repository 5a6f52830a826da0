package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCommand(ctx context.Context, chatID int64, cmd, args string) {
	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "quote", "book":
		b.startQuoteFlow(ctx, chatID)
	case "vip":
		b.handleVIP(ctx, chatID)
	case "contact":
		b.handleContact(ctx, chatID)
	case "admin":
		b.handleAdmin(ctx, chatID)
	case "signout":
		b.handleSignOut(ctx, chatID)
	case "cancel":
		b.handleCancel(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	case "stats", "bookings", "export", "status", "config":
		b.handleAdminCommand(ctx, chatID, cmd, strings.Fields(args))
	default:
		b.sendError(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if b.settings.CookiesAccepted(ctx) {
		b.showWelcome(ctx, chatID)
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Welcome to MiraCars! 🚗\n\n"+
		"Before we continue, please accept our privacy and cookie policy. "+
		"We only store what is needed to prepare your booking.")
	msg.ReplyMarkup = b.createConsentKeyboard()
	b.sendMessage(msg)

	if err := b.state.SetStep(ctx, chatID, StepCookieConsent); err != nil {
		b.logger.Error("Failed to set cookie consent step",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleCookieConsent(ctx context.Context, chatID int64, text string) {
	if text != buttonAccept {
		b.sendError(chatID, "Please press \""+buttonAccept+"\" to continue.")
		return
	}

	if err := b.settings.SetCookiesAccepted(ctx, true); err != nil {
		b.logger.Error("Failed to persist cookie consent",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.showWelcome(ctx, chatID)
}

func (b *Bot) showWelcome(ctx context.Context, chatID int64) {
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.sendText(chatID, "🚗 MiraCars rentals\n\n"+
		"/quote - price a rental and book\n"+
		"/vip - VIP members area\n"+
		"/contact - how to reach us\n"+
		"/help - all commands")
}

func (b *Bot) handleContact(ctx context.Context, chatID int64) {
	phone := b.settings.PhoneNumber(ctx)
	channel := "phone or SMS"
	if b.settings.UseWhatsApp(ctx) {
		channel = "WhatsApp"
	}
	b.sendText(chatID, fmt.Sprintf("📞 Reach us on %s via %s.", phone, channel))
}

func (b *Bot) handleVIP(ctx context.Context, chatID int64) {
	if b.settings.VIPUnlocked(ctx) {
		b.sendText(chatID, "⭐ "+b.settings.VIPGreeting(ctx))
		return
	}

	b.sendText(chatID, "⭐ The VIP area is locked. Send your VIP code:")
	if err := b.state.SetStep(ctx, chatID, StepVIPCode); err != nil {
		b.logger.Error("Failed to set VIP code step",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleVIPCode(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) != b.settings.VIPCode(ctx) {
		b.sendError(chatID, "That code is not valid.")
		return
	}

	if err := b.settings.SetVIPUnlocked(ctx, true); err != nil {
		b.logger.Error("Failed to persist VIP unlock",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Could not unlock the VIP area, please try again.")
		return
	}

	b.sendText(chatID, "⭐ "+b.settings.VIPGreeting(ctx))
	if err := b.state.SetStep(ctx, chatID, ""); err != nil {
		b.logger.Error("Failed to reset step",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleSignOut(ctx context.Context, chatID int64) {
	b.auth.SignOut(chatID)

	// Closing the settings view is part of signing out.
	if err := b.state.SetStep(ctx, chatID, ""); err != nil {
		b.logger.Error("Failed to reset step",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.sendText(chatID, "Signed out.")
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.sendText(chatID, "Cancelled. Send /quote to start over.")
}

func (b *Bot) handleHelp(chatID int64) {
	b.sendText(chatID, "Commands:\n"+
		"/quote - price a rental and book\n"+
		"/vip - VIP members area\n"+
		"/contact - how to reach us\n"+
		"/cancel - abandon the current flow\n"+
		"/admin - operator settings\n"+
		"/signout - leave admin mode")
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.sendText(chatID, "Send /quote to price a rental, or /help for all commands.")
}
