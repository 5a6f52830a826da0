package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"miracars-bot/internal/admin"
	"miracars-bot/internal/auth"
	"miracars-bot/internal/config"
	"miracars-bot/internal/settings"
	"miracars-bot/internal/storage"
)

type Bot struct {
	bot      *tgbotapi.BotAPI
	logger   *zap.Logger
	cfg      *config.Config
	state    *StateStorage
	settings *settings.Store
	auth     *auth.Manager
	editor   *admin.Editor
	storage  *storage.PostgresStorage
	handlers map[string]func(context.Context, int64, string)
}

func New(
	token string,
	state *StateStorage,
	settingsStore *settings.Store,
	pgStorage *storage.PostgresStorage,
	logger *zap.Logger,
	cfg *config.Config,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := &Bot{
		bot:      botAPI,
		logger:   logger,
		cfg:      cfg,
		state:    state,
		settings: settingsStore,
		auth:     auth.NewManager(settingsStore),
		editor:   admin.NewEditor(settingsStore),
		storage:  pgStorage,
	}

	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepCookieConsent:    b.handleCookieConsent,
		StepPickupDate:       b.handlePickupDate,
		StepDropoffDate:      b.handleDropoffDate,
		StepCategory:         b.handleCategory,
		StepExtras:           b.handleExtras,
		StepPayment:          b.handlePayment,
		StepName:             b.handleName,
		StepEmail:            b.handleEmail,
		StepPhone:            b.handlePhone,
		StepNotes:            b.handleNotes,
		StepConfirm:          b.handleConfirm,
		StepVIPCode:          b.handleVIPCode,
		StepAdminNewPassword: b.handleAdminNewPassword,
		StepAdminPassword:    b.handleAdminPassword,
		StepAdminEdit:        b.handleAdminEdit,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update := <-updates:
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
		return
	}

	if msg.Contact != nil {
		if state, err := b.state.Get(ctx, chatID); err == nil && state.Step == StepPhone {
			b.handlePhone(ctx, chatID, msg.Contact.PhoneNumber)
			return
		}
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}
