package handlers

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/safety"
)

// NewReplyButtonText resolves presses of the persistent reply keyboard, which
// arrive as plain localized text, before handing unmatched text to next.
func NewReplyButtonText(env *Env, routes map[string]Handler, next Handler) Handler {
	labels := make(map[string]Handler)
	for _, lang := range env.I18n.Languages() {
		t := env.I18n.Translator(lang)
		for action, handler := range routes {
			key := "btn." + action
			if label := t.T(key); label != key {
				labels[label] = handler
			}
		}
	}

	return func(c telebot.Context) error {
		if handler, ok := labels[strings.TrimSpace(c.Text())]; ok {
			return handler(c)
		}
		return next(c)
	}
}

// NewFallbackText handles free text that no active flow claimed. Safety
// filters still apply, everything else gets pointed at the menu.
func NewFallbackText(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}
		t := env.Translator(profile)

		text := strings.TrimSpace(c.Text())
		if safety.IsUnrealisticRequest(text) {
			return c.Send(t.T("safety.unrealistic"))
		}
		if safety.IsFrustrated(text) {
			return c.Send(t.T("safety.frustration"))
		}

		return c.Send(t.T("menu.title"), env.Keyboard.MainMenu(t))
	}
}
