package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/generation"
	"github.com/sintrade/edubot/internal/i18n"
	"github.com/sintrade/edubot/internal/progress"
)

const quizQuestionCount = 3

type lessonReply struct {
	text   string
	markup *telebot.ReplyMarkup
}

// NewLessonHandler serves the learner's current lesson. Dynamic generation is
// attempted when enabled; the static catalog backs every failure path.
func NewLessonHandler(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		var reply lessonReply
		_, err := env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			lesson, err := env.Gate.CurrentLesson(p)
			if err != nil {
				reply = gateReply(env, t, p, err)
				return nil
			}

			total := env.Catalog.LessonCount(p.Level, p.Access)

			generated, genErr := env.Provider.Lesson(context.Background(), generation.LessonRequest{
				Level:        p.Level,
				Access:       p.Access,
				Focus:        p.Focus,
				Language:     p.Language,
				LessonNumber: p.CurrentLessonIndex + 1,
				TotalLessons: total,
			})
			if genErr == nil && generated != nil {
				lesson = generated
				p.PendingLesson = generated
			}

			reply = lessonReply{
				text:   renderLesson(t, lesson, p.CurrentLessonIndex, total),
				markup: env.Keyboard.LessonActions(t, p.CurrentLessonIndex, p.LessonCompleted),
			}
			return nil
		})
		if err != nil {
			return err
		}

		return sendReply(c, reply)
	}
}

// NewCompleteLessonCallback handles the "I finished reading" button.
func NewCompleteLessonCallback(env *Env) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || c.Sender() == nil {
			return nil
		}

		_, data, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return err
		}

		// Payload is "complete:<index>".
		index := -1
		if rest, ok := strings.CutPrefix(data, "complete:"); ok {
			if parsed, err := strconv.Atoi(rest); err == nil {
				index = parsed
			}
		}

		var reply lessonReply
		_, err = env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			if _, err := env.Gate.CompleteLesson(p, index); err != nil {
				reply = gateReply(env, t, p, err)
				return nil
			}

			reply = lessonReply{
				text:   t.T("lesson.completed"),
				markup: env.Keyboard.LessonActions(t, p.CurrentLessonIndex, true),
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

// NewStartQuizCallback opens the quiz for the completed lesson.
func NewStartQuizCallback(env *Env) CallbackHandler {
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
			if !p.LessonCompleted || p.PendingLesson == nil {
				reply = lessonReply{text: t.T("lesson.not_completed")}
				return nil
			}

			questions, err := env.Provider.Quiz(context.Background(), generation.QuizRequest{
				Lesson:   p.PendingLesson,
				Focus:    p.Focus,
				Language: p.Language,
				Count:    quizQuestionCount,
				Profile:  p,
			})
			if err != nil || len(questions) == 0 {
				reply = lessonReply{text: t.T("errors.generic")}
				return nil
			}

			first, err := env.Gate.StartQuiz(p, questions)
			if err != nil {
				reply = gateReply(env, t, p, err)
				return nil
			}

			reply = lessonReply{
				text:   renderQuestion(t, first, 1, len(p.Quiz.Questions)),
				markup: env.Keyboard.QuizOptions(*first),
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

// NewQuizAnswerCallback scores one answer and either advances the quiz or
// closes it out.
func NewQuizAnswerCallback(env *Env) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || c.Sender() == nil {
			return nil
		}

		_, key, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return err
		}

		ackCallback(env, c)
		return submitQuizAnswer(env, c, key)
	}
}

// NewQuizTextAnswer lets learners answer by typing the option letter while a
// quiz is active. Text without a recognizable option gets a nudge toward the
// buttons.
func NewQuizTextAnswer(env *Env) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		key, ok := extractOption(c.Text())
		if !ok {
			profile, err := env.peek(c)
			if err != nil {
				return err
			}
			return c.Send(env.Translator(profile).T("quiz.pick_option"))
		}

		return submitQuizAnswer(env, c, key)
	}
}

var optionPattern = regexp.MustCompile(`\b([A-D])\b`)

// extractOption pulls a single quiz option letter out of free text.
func extractOption(text string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(text))
	if len(normalized) == 1 && normalized[0] >= 'A' && normalized[0] <= 'D' {
		return normalized, true
	}
	if match := optionPattern.FindStringSubmatch(normalized); match != nil {
		return match[1], true
	}
	return "", false
}

func submitQuizAnswer(env *Env, c telebot.Context, key string) error {
	var replies []lessonReply
	_, err := env.update(c, func(p *domain.Profile) error {
		t := env.Translator(p)

		result, err := env.Gate.SubmitAnswer(p, key)
		if err != nil {
			replies = append(replies, gateReply(env, t, p, err))
			return nil
		}

		if result.Correct {
			replies = append(replies, lessonReply{text: t.T("quiz.correct")})
		} else {
			replies = append(replies, lessonReply{text: fmt.Sprintf(t.T("quiz.wrong"), result.Explanation)})
		}

		switch {
		case result.NextQuestion != nil:
			number := p.Quiz.QuestionIndex + 1
			replies = append(replies, lessonReply{
				text:   renderQuestion(t, result.NextQuestion, number, len(p.Quiz.Questions)),
				markup: env.Keyboard.QuizOptions(*result.NextQuestion),
			})
		case result.Finished && result.LevelComplete:
			replies = append(replies,
				lessonReply{text: fmt.Sprintf(t.T("quiz.finished"), result.Score, result.Total)},
				lessonReply{text: t.T("lesson.level_complete"), markup: env.Keyboard.LevelUp(t)},
			)
		case result.Finished:
			replies = append(replies, lessonReply{
				text:   fmt.Sprintf(t.T("quiz.finished"), result.Score, result.Total),
				markup: env.Keyboard.NextLesson(t),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, reply := range replies {
		if err := sendReply(c, reply); err != nil {
			return err
		}
	}
	return nil
}

// NewLevelUpCallback moves the learner to the next curriculum level.
func NewLevelUpCallback(env *Env) CallbackHandler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}

		var reply lessonReply
		_, err := env.update(c, func(p *domain.Profile) error {
			t := env.Translator(p)

			level, err := env.Gate.AdvanceLevel(p)
			if err != nil {
				reply = gateReply(env, t, p, err)
				return nil
			}

			reply = lessonReply{
				text:   fmt.Sprintf(t.T("level.advanced"), levelLabel(t, level)),
				markup: env.Keyboard.NextLesson(t),
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

// gateReply translates checkpoint errors into user-facing messages.
func gateReply(env *Env, t i18n.Translator, p *domain.Profile, err error) lessonReply {
	switch {
	case errors.Is(err, progress.ErrKilled):
		return lessonReply{text: t.T("lesson.killed")}
	case errors.Is(err, progress.ErrQuizActive):
		reply := lessonReply{text: t.T("lesson.quiz_active")}
		if p.HasActiveQuiz() {
			q := p.Quiz.Questions[p.Quiz.QuestionIndex]
			reply = lessonReply{
				text:   renderQuestion(t, &q, p.Quiz.QuestionIndex+1, len(p.Quiz.Questions)),
				markup: env.Keyboard.QuizOptions(q),
			}
		}
		return reply
	case errors.Is(err, progress.ErrNoActiveQuiz):
		return lessonReply{text: t.T("quiz.none_active")}
	case errors.Is(err, progress.ErrNotCurrentLesson):
		return lessonReply{text: t.T("lesson.stale")}
	case errors.Is(err, progress.ErrLessonNotCompleted):
		return lessonReply{text: t.T("lesson.not_completed")}
	case errors.Is(err, progress.ErrLevelComplete):
		return lessonReply{text: t.T("lesson.level_complete"), markup: env.Keyboard.LevelUp(t)}
	case errors.Is(err, progress.ErrPremiumLocked):
		return lessonReply{text: t.T("lesson.premium_locked")}
	case errors.Is(err, progress.ErrCourseComplete):
		return lessonReply{text: t.T("lesson.course_complete")}
	}
	return lessonReply{text: t.T("errors.generic")}
}

func sendReply(c telebot.Context, reply lessonReply) error {
	if reply.text == "" {
		return nil
	}
	if reply.markup != nil {
		return c.Send(reply.text, reply.markup)
	}
	return c.Send(reply.text)
}

func ackCallback(env *Env, c telebot.Context) {
	if err := c.Respond(&telebot.CallbackResponse{}); err != nil && env.Log != nil {
		env.Log.Debug("callback ack failed", "error", err)
	}
}
