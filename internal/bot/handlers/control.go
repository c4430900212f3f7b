package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/progress"
)

// NewKillHandler pauses the bot for an account. Without arguments learners
// pause themselves; targeting another user is admin only:
//
//	/kill [user_id]
func NewKillHandler(env *Env) Handler {
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

		targetID := sender.ID
		if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
			if env.IsAdmin == nil || !env.IsAdmin(sender.ID) {
				return c.Send(t.T("kill.admin_only"))
			}
			parsed, err := strconv.ParseInt(payload, 10, 64)
			if err != nil {
				return c.Send("/kill [user_id]")
			}
			targetID = parsed
		}

		if _, err := env.Sessions.Update(context.Background(), targetID, func(p *domain.Profile) error {
			env.Gate.Kill(p)
			return nil
		}); err != nil {
			return err
		}

		return c.Send(t.T("kill.confirmed"))
	}
}

// NewResetHandler wipes the learner's profile and starts them over. This is
// also the only way out of the killed state.
func NewResetHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}
		t := env.Translator(profile)

		if err := env.Sessions.Reset(context.Background(), sender.ID); err != nil {
			return err
		}

		return c.Send(t.T("reset.confirmed"))
	}
}

// NewStatusHandler reports the AI backend state, the learner's in-flight
// activity and their profile summary. Reading only; repeated calls leave
// the profile as-is.
func NewStatusHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}
		t := env.Translator(profile)

		aiStatus := "❌"
		if env.AI != nil {
			aiStatus = env.AI.StatusLabel(profile.Language)
		}

		state := string(progress.StateOf(profile))
		return c.Send(fmt.Sprintf(t.T("status.text"), aiStatus, state, profileSummary(env, t, profile)))
	}
}
