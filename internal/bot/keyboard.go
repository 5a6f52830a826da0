package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	buttonAccept    = "✅ Accept"
	buttonDone      = "✅ Done"
	buttonSkip      = "Skip"
	buttonConfirm   = "✅ Confirm booking"
	buttonStartOver = "🔁 Start over"
	buttonToday     = "Today"
	buttonTomorrow  = "Tomorrow"
	buttonBiometric = "👆 Use fingerprint"
)

func (b *Bot) createConsentKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAccept),
		),
	)
}

func (b *Bot) createDateKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonToday),
			tgbotapi.NewKeyboardButton(buttonTomorrow),
		),
	)
}

func (b *Bot) createConfirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonStartOver),
			tgbotapi.NewKeyboardButton(buttonConfirm),
		),
	)
}

func (b *Bot) createAdminLoginKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonBiometric),
		),
	)
}

func (b *Bot) createContactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Share my contact"),
		),
	)
}

// createNameKeyboard lays out one button per name, two per row.
func createNameKeyboard(names []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(names); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(names[i])}
		if i+1 < len(names) {
			row = append(row, tgbotapi.NewKeyboardButton(names[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
