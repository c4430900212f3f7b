package handlers

import (
	"fmt"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/i18n"
)

const lessonsPerPage = 5

// NewLessonsListHandler lists the lessons of the learner's level with the
// current one marked. Premium learners see the full catalog of the level.
func NewLessonsListHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		return sendLessonsPage(env, c, profile, 1)
	}
}

// NewLessonsPageCallback flips between pages of the lesson list.
func NewLessonsPageCallback(env *Env) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || c.Sender() == nil {
			return nil
		}

		_, data, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return err
		}

		page, err := strconv.Atoi(data)
		if err != nil {
			page = 1
		}

		profile, err := env.peek(c)
		if err != nil {
			return err
		}

		ackCallback(env, c)
		return sendLessonsPage(env, c, profile, page)
	}
}

func sendLessonsPage(env *Env, c telebot.Context, profile *domain.Profile, page int) error {
	t := env.Translator(profile)

	lessons := env.Catalog.Lessons(profile.Level, domain.AccessPremium)
	if len(lessons) == 0 {
		return c.Send(t.T("lesson.premium_locked"))
	}

	totalPages := (len(lessons) + lessonsPerPage - 1) / lessonsPerPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * lessonsPerPage
	end := start + lessonsPerPage
	if end > len(lessons) {
		end = len(lessons)
	}

	text := renderLessonsPage(t, profile, lessons, start, end)

	markup, err := keyboard.NewInlineKeyboard().
		AddRow(keyboard.PaginationButtons(t, "lessons", page, totalPages)...).
		Build()
	if err != nil {
		return err
	}

	return c.Send(text, markup)
}

func renderLessonsPage(t i18n.Translator, profile *domain.Profile, lessons []domain.Lesson, start, end int) string {
	var b strings.Builder
	fmt.Fprintf(&b, t.T("lessons.header"), levelLabel(t, profile.Level))

	// The accessible list can be shorter than the full one for free users,
	// so the current marker maps through the accessible lesson's ID.
	currentID := ""
	if profile.Access != domain.AccessPremium {
		free := make([]domain.Lesson, 0, len(lessons))
		for _, lesson := range lessons {
			if !lesson.PremiumOnly {
				free = append(free, lesson)
			}
		}
		if profile.CurrentLessonIndex < len(free) {
			currentID = free[profile.CurrentLessonIndex].ID
		}
	} else if profile.CurrentLessonIndex < len(lessons) {
		currentID = lessons[profile.CurrentLessonIndex].ID
	}

	for i := start; i < end; i++ {
		lesson := lessons[i]
		fmt.Fprintf(&b, "\n%d. %s", i+1, lesson.Title)
		if lesson.PremiumOnly && profile.Access != domain.AccessPremium {
			b.WriteString(t.T("lessons.locked_marker"))
		}
		if lesson.ID == currentID {
			b.WriteString(t.T("lessons.current_marker"))
		}
	}

	return b.String()
}
