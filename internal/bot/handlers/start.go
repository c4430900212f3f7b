package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/domain"
)

// NewStartHandler greets the learner and creates their profile on first
// contact. Returning learners get a pointer back into the curriculum.
func NewStartHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		var returning bool
		profile, err := env.update(c, func(p *domain.Profile) error {
			returning = p.CurrentLessonIndex > 0 || p.LessonCompleted || p.HasActiveQuiz()
			return nil
		})
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		name := strings.TrimSpace(sender.FirstName)
		if name == "" {
			name = sender.Username
		}

		if returning {
			return c.Send(
				fmt.Sprintf(t.T("start.returning"), name, levelLabel(t, profile.Level), profile.CurrentLessonIndex+1),
				keyboard.MainMenu(t),
			)
		}

		return c.Send(fmt.Sprintf(t.T("start.welcome"), name), keyboard.MainMenu(t))
	}
}

// NewHelpHandler lists the available commands.
func NewHelpHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(t.T("help.text"))
	}
}

// NewMenuHandler shows the inline main menu.
func NewMenuHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(t.T("menu.title"), env.Keyboard.MainMenu(t))
	}
}

// NewButtonsHandler restores the persistent reply keyboard for learners who
// dismissed it.
func NewButtonsHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send("👇", keyboard.MainMenu(t))
	}
}

// NewMenuCallback routes inline main menu button presses to their commands.
func NewMenuCallback(env *Env, routes map[string]Handler) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		_, action, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return err
		}

		handler, ok := routes[action]
		if !ok {
			if env.Log != nil {
				env.Log.Warn("unknown menu action", slog.String("action", action))
			}
			return nil
		}

		if err := c.Respond(&telebot.CallbackResponse{}); err != nil && env.Log != nil {
			env.Log.Debug("callback ack failed", slog.Any("error", err))
		}

		return handler(c)
	}
}
