package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/safety"
)

// NewAskMeHandler toggles free-question mode.
func NewAskMeHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		var reply lessonReply
		_, err := env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			if p.Killed {
				reply = lessonReply{text: t.T("lesson.killed")}
				return nil
			}

			p.AssistantMode = !p.AssistantMode
			if p.AssistantMode {
				reply = lessonReply{text: t.T("askme.enabled")}
			} else {
				reply = lessonReply{text: t.T("askme.disabled")}
			}
			return nil
		})
		if err != nil {
			return err
		}

		return sendReply(c, reply)
	}
}

// NewAssistantInput answers free questions. Unrealistic-profit requests are
// refused before any model call, and every answer carries the risk reminder.
func NewAssistantInput(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		question := strings.TrimSpace(c.Text())

		profile, err := env.peek(c)
		if err != nil {
			return err
		}
		t := env.Translator(profile)

		if safety.IsUnrealisticRequest(question) {
			return c.Send(t.T("safety.unrealistic"))
		}
		if safety.IsFrustrated(question) {
			return c.Send(t.T("safety.frustration"))
		}

		answer, err := env.Provider.Answer(context.Background(), question, profile.Language)
		if err != nil {
			if env.Log != nil {
				env.Log.Debug("assistant answer unavailable",
					slog.Int64("user_id", c.Sender().ID), slog.Any("error", err))
			}
			return c.Send(t.T("askme.unavailable"))
		}

		return c.Send(answer + "\n\n" + t.T("safety.risk_reminder"))
	}
}
