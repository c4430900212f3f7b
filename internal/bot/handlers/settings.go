package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/i18n"
)

// NewLevelMenuHandler handles /setlevel. With an argument the level is
// applied directly; without one the learner gets the picker.
func NewLevelMenuHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if value := commandArg(c); value != "" {
			var reply lessonReply
			if _, err := env.update(c, func(p *domain.Profile) error {
				reply = applyLevel(env.Translator(p), p, value)
				return nil
			}); err != nil {
				return err
			}
			return sendReply(c, reply)
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(t.T("level.choose"), env.Keyboard.LevelMenu(t))
	}
}

// NewFocusMenuHandler handles /setfocus the same way: argument applies,
// no argument shows the picker.
func NewFocusMenuHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if value := commandArg(c); value != "" {
			var reply lessonReply
			if _, err := env.update(c, func(p *domain.Profile) error {
				reply = applyFocus(env.Translator(p), p, value)
				return nil
			}); err != nil {
				return err
			}
			return sendReply(c, reply)
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(t.T("focus.choose"), env.Keyboard.FocusMenu(t))
	}
}

// NewLanguageMenuHandler shows the language picker.
func NewLanguageMenuHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(t.T("language.choose"), env.Keyboard.LanguageMenu())
	}
}

// NewSetCallback applies level, focus and language selections. Changing the
// level restarts the learner at that level's first lesson.
func NewSetCallback(env *Env) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || c.Sender() == nil {
			return nil
		}

		_, data, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return err
		}

		field, value, ok := strings.Cut(data, ":")
		if !ok {
			return nil
		}

		var reply lessonReply
		_, err = env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			switch field {
			case "level":
				reply = applyLevel(t, p, value)
			case "focus":
				reply = applyFocus(t, p, value)
			case "lang":
				if value != "ar" && value != "en" {
					return nil
				}
				p.Language = value
				// Re-resolve so the confirmation is in the new language.
				reply = lessonReply{text: env.Translator(p).T("language.set")}
			default:
				if env.Log != nil {
					env.Log.Warn("unknown settings field", slog.String("field", field))
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		ackCallback(env, c)
		return sendReply(c, reply)
	}
}

// NewAccessHandler is the admin-only /setaccess command:
//
//	/setaccess premium [user_id]
func NewAccessHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		own, err := env.peek(c)
		if err != nil {
			return err
		}
		t := env.Translator(own)

		if env.IsAdmin == nil || !env.IsAdmin(sender.ID) {
			return c.Send(t.T("kill.admin_only"))
		}

		args := strings.Fields(c.Message().Payload)
		if len(args) == 0 {
			return c.Send("/setaccess <free|premium> [user_id]")
		}

		access, valid := domain.ParseAccess(args[0])
		if !valid {
			return c.Send("/setaccess <free|premium> [user_id]")
		}

		targetID := sender.ID
		if len(args) > 1 {
			parsed, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return c.Send("/setaccess <free|premium> [user_id]")
			}
			targetID = parsed
		}

		if _, err := env.Sessions.Update(context.Background(), targetID, func(p *domain.Profile) error {
			p.Access = access
			return nil
		}); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf(t.T("access.set"), accessLabel(t, access)))
	}
}

// applyLevel switches the learner's level and restarts their lesson
// progress. Unknown values get a corrective reply and leave the profile
// untouched.
func applyLevel(t i18n.Translator, p *domain.Profile, value string) lessonReply {
	level, valid := domain.ParseLevel(value)
	if !valid {
		return lessonReply{text: t.T("level.invalid")}
	}
	p.Level = level
	resetLessonState(p)
	return lessonReply{text: fmt.Sprintf(t.T("level.set"), levelLabel(t, level))}
}

func applyFocus(t i18n.Translator, p *domain.Profile, value string) lessonReply {
	focus, valid := domain.ParseFocus(value)
	if !valid {
		return lessonReply{text: t.T("focus.invalid")}
	}
	p.Focus = focus
	return lessonReply{text: fmt.Sprintf(t.T("focus.set"), string(focus))}
}

// commandArg returns the first command argument, lowercased, or "" when the
// command came without one.
func commandArg(c telebot.Context) string {
	msg := c.Message()
	if msg == nil {
		return ""
	}
	args := strings.Fields(msg.Payload)
	if len(args) == 0 {
		return ""
	}
	return strings.ToLower(args[0])
}

// resetLessonState drops lesson progress and any in-flight activity. Used
// when the learner jumps to a different level.
func resetLessonState(p *domain.Profile) {
	p.CurrentLessonIndex = 0
	p.LessonCompleted = false
	p.PendingLesson = nil
	p.Quiz = nil
}
