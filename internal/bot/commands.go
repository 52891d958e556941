package bot

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
)

// Commands is the command menu published to Telegram on start.
func Commands() []telebot.Command {
	return []telebot.Command{
		{Text: handlers.CommandStart[1:], Description: "Головне меню"},
		{Text: handlers.CommandCancel[1:], Description: "Скасувати поточну дію"},
	}
}
