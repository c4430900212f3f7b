package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/generation"
)

// dailyChallengeKey mirrors the key the rotation job publishes under.
const dailyChallengeKey = "challenge:today"

// A strong challenge answer needs this many words and keyword hits.
const (
	strongAnswerWords    = 8
	strongAnswerKeywords = 3
)

// NewChallengeHandler serves the challenge of the day and arms the profile to
// receive the learner's written analysis.
func NewChallengeHandler(env *Env) Handler {
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

			if p.HasActiveChallenge() {
				reply = lessonReply{text: fmt.Sprintf(t.T("challenge.intro"), p.Challenge.Prompt)}
				return nil
			}

			challenge := env.todayChallenge(p)
			p.Challenge = &domain.ChallengeRecord{
				Prompt:           challenge.Prompt,
				ExpectedKeywords: challenge.ExpectedKeywords,
			}

			reply = lessonReply{text: fmt.Sprintf(t.T("challenge.intro"), challenge.Prompt)}
			return nil
		})
		if err != nil {
			return err
		}

		return sendReply(c, reply)
	}
}

// NewChallengeInput scores the learner's written analysis against the
// challenge's expected keywords.
func NewChallengeInput(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		answer := strings.TrimSpace(c.Text())

		var reply lessonReply
		_, err := env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			if !p.HasActiveChallenge() {
				reply = lessonReply{text: t.T("challenge.none_active")}
				return nil
			}

			matched, missing := matchKeywords(answer, p.Challenge.ExpectedKeywords)
			words := len(strings.Fields(answer))

			switch {
			case words >= strongAnswerWords && matched >= strongAnswerKeywords:
				reply = lessonReply{text: t.T("challenge.strong")}
			case matched > 0:
				reply = lessonReply{text: fmt.Sprintf(t.T("challenge.ok"), strings.Join(missing, ", "))}
			default:
				reply = lessonReply{text: fmt.Sprintf(t.T("challenge.weak"), strings.Join(missing, ", "))}
			}

			p.ChallengesDone++
			p.Challenge = nil
			return nil
		})
		if err != nil {
			return err
		}

		return sendReply(c, reply)
	}
}

// todayChallenge prefers the published challenge of the day, then live
// generation, then the deterministic catalog pick.
func (e *Env) todayChallenge(p *domain.Profile) domain.Challenge {
	ctx := context.Background()

	if e.Redis != nil {
		if raw, err := e.Redis.Get(ctx, dailyChallengeKey).Result(); err == nil {
			var challenge domain.Challenge
			if err := json.Unmarshal([]byte(raw), &challenge); err == nil && challenge.Prompt != "" {
				return challenge
			}
		}
	}

	if generated, err := e.Provider.Challenge(ctx, generation.ScenarioRequest{
		Level:    p.Level,
		Focus:    p.Focus,
		Language: p.Language,
	}); err == nil && generated != nil {
		return *generated
	}

	return e.Catalog.ChallengeOfDay(time.Now().UTC())
}

// matchKeywords counts expected keywords found in the answer and reports the
// ones still missing.
func matchKeywords(answer string, keywords []string) (int, []string) {
	lowered := strings.ToLower(answer)

	matched := 0
	missing := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			matched++
			continue
		}
		missing = append(missing, keyword)
	}

	return matched, missing
}
