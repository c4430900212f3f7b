package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
)

// NewCancelHandler abandons any in-flight quiz, simulation or challenge and
// returns the learner to the main menu. Curriculum progress is untouched.
func NewCancelHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		profile, err := env.update(c, func(p *domain.Profile) error {
			p.Quiz = nil
			p.Simulation = nil
			p.Challenge = nil
			p.AssistantMode = false
			return nil
		})
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(t.T("menu.title"), env.Keyboard.MainMenu(t))
	}
}
