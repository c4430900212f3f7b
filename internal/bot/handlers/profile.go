package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/i18n"
)

// NewProfileHandler returns a handler for the /profile command.
func NewProfileHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		t := env.Translator(profile)
		return c.Send(profileSummary(env, t, profile))
	}
}

// profileSummary renders the learner's position within the curriculum. Both
// /profile and /status show it.
func profileSummary(env *Env, t i18n.Translator, profile *domain.Profile) string {
	total := env.Catalog.LessonCount(profile.Level, profile.Access)

	lessonNumber := profile.CurrentLessonIndex + 1
	if lessonNumber > total {
		lessonNumber = total
	}

	return fmt.Sprintf(
		t.T("profile.summary"),
		levelLabel(t, profile.Level),
		accessLabel(t, profile.Access),
		string(profile.Focus),
		lessonNumber,
		total,
		profile.SimulationsDone,
		profile.ChallengesDone,
	)
}
