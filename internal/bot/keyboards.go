package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deusflow/pabot/internal/news"
)

const (
	ButtonMail  = "📧 Пошта"
	ButtonNotes = "📝 Нотатки"

	CallbackMailUnread = "mail_unread_12h"
	CallbackMailLast   = "mail_last_10"
	CallbackNotesShow  = "notes_show"
	CallbackNotesAdd   = "notes_add"

	newsCallbackPrefix = "news:"
)

// Commands is the menu registered with setMyCommands.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Головне меню"},
	{Command: "mail", Description: "Перегляд пошти"},
	{Command: "news", Description: "Новини"},
	{Command: "list_add", Description: "Додати позицію до списку"},
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(ButtonMail),
		tgbotapi.NewKeyboardButton(ButtonNotes),
	))
	kb.ResizeKeyboard = true
	return kb
}

func newsKeyboard(categories []news.Category) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, newsCallbackPrefix+c.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mailKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Непрочитані 12h", CallbackMailUnread)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Останні 10 (Інбокс)", CallbackMailLast)),
	)
}

func notesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Показати список", CallbackNotesShow)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Додати позицію", CallbackNotesAdd)),
	)
}
