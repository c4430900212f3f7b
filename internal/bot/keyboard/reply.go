package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/i18n"
)

// MainMenu builds a localized reply keyboard for the bot main menu.
func MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	lessonBtn := markup.Text(lookup("btn.lesson"))
	simulateBtn := markup.Text(lookup("btn.simulate"))
	challengeBtn := markup.Text(lookup("btn.challenge"))
	profileBtn := markup.Text(lookup("btn.profile"))
	askmeBtn := markup.Text(lookup("btn.askme"))
	helpBtn := markup.Text(lookup("btn.help"))

	markup.Reply(
		markup.Row(lessonBtn, simulateBtn),
		markup.Row(challengeBtn, profileBtn),
		markup.Row(askmeBtn, helpBtn),
	)

	return markup
}
