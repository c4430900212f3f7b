// Package progress implements the checkpoint flow that gates lesson,
// quiz and level advancement for each learner.
package progress

import (
	"errors"
	"log/slog"

	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/domain"
)

var (
	// ErrKilled indicates that the assistant was shut off for this user.
	ErrKilled = errors.New("assistant is disabled for this user")
	// ErrQuizActive indicates that a quiz is already waiting for an answer.
	ErrQuizActive = errors.New("a quiz is already in progress")
	// ErrNoActiveQuiz indicates that an answer arrived with no quiz running.
	ErrNoActiveQuiz = errors.New("no quiz in progress")
	// ErrNotCurrentLesson indicates a completion claim for a lesson other than the current one.
	ErrNotCurrentLesson = errors.New("not the current lesson")
	// ErrLessonNotCompleted indicates a quiz start before the lesson was confirmed.
	ErrLessonNotCompleted = errors.New("complete the lesson first")
	// ErrLevelComplete indicates that every lesson in the current level is finished.
	ErrLevelComplete = errors.New("level complete")
	// ErrPremiumLocked indicates content that requires premium access.
	ErrPremiumLocked = errors.New("premium access required")
	// ErrCourseComplete indicates that the final level is finished.
	ErrCourseComplete = errors.New("course complete")
)

// AnswerResult describes the outcome of a single quiz answer.
type AnswerResult struct {
	Correct     bool
	Explanation string

	// NextQuestion is set while the quiz continues.
	NextQuestion *domain.QuizQuestion

	// Finished, Score and Total are set by the final answer.
	Finished bool
	Score    int
	Total    int

	// LevelComplete is set when the finished lesson was the last of its level.
	LevelComplete bool
}

// Gate enforces the lesson/quiz checkpoint rules over a static catalog.
// All methods mutate the profile in memory only; callers persist the result.
type Gate struct {
	catalog *content.Catalog
	log     *slog.Logger
}

// NewGate creates a checkpoint gate backed by the given catalog.
func NewGate(catalog *content.Catalog, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}

	return &Gate{catalog: catalog, log: log}
}

// CurrentLesson returns the lesson the user should work on next and marks it
// as pending on the profile. Returns ErrLevelComplete once the level is done.
func (g *Gate) CurrentLesson(p *domain.Profile) (*domain.Lesson, error) {
	if p.Killed {
		return nil, ErrKilled
	}
	if p.HasActiveQuiz() {
		return nil, ErrQuizActive
	}

	lesson, ok := g.catalog.Lesson(p.Level, p.Access, p.CurrentLessonIndex)
	if !ok {
		if g.catalog.LessonCount(p.Level, p.Access) == 0 {
			return nil, ErrPremiumLocked
		}
		return nil, ErrLevelComplete
	}

	p.PendingLesson = lesson
	return lesson, nil
}

// CompleteLesson records that the user finished reading lesson index. The
// index must match the profile's current position; stale completion buttons
// from earlier lessons are rejected.
func (g *Gate) CompleteLesson(p *domain.Profile, index int) (*domain.Lesson, error) {
	if p.Killed {
		return nil, ErrKilled
	}
	if p.HasActiveQuiz() {
		return nil, ErrQuizActive
	}
	if index != p.CurrentLessonIndex {
		return nil, ErrNotCurrentLesson
	}

	lesson := p.PendingLesson
	if lesson == nil {
		stored, ok := g.catalog.Lesson(p.Level, p.Access, index)
		if !ok {
			return nil, ErrNotCurrentLesson
		}
		lesson = stored
		p.PendingLesson = stored
	}

	g.transition(p, StateOf(p), StateLessonComplete)
	p.LessonCompleted = true

	return lesson, nil
}

// StartQuiz opens a quiz on the pending lesson using the supplied questions.
// The lesson must have been completed first; that check is the whole point
// of the gate.
func (g *Gate) StartQuiz(p *domain.Profile, questions []domain.QuizQuestion) (*domain.QuizQuestion, error) {
	if p.Killed {
		return nil, ErrKilled
	}
	if p.HasActiveQuiz() {
		return nil, ErrQuizActive
	}
	if !p.LessonCompleted || p.PendingLesson == nil {
		return nil, ErrLessonNotCompleted
	}
	if p.PendingLesson.PremiumOnly && p.Access != domain.AccessPremium {
		return nil, ErrPremiumLocked
	}
	if len(questions) == 0 {
		questions = p.PendingLesson.Quiz
	}
	if len(questions) == 0 {
		return nil, ErrNoActiveQuiz
	}

	g.transition(p, StateLessonComplete, StateQuiz)
	p.Quiz = &domain.QuizRecord{
		LessonID:    p.PendingLesson.ID,
		LessonIndex: p.CurrentLessonIndex,
		Level:       p.Level,
		Questions:   questions,
		Dynamic:     p.PendingLesson.Dynamic(),
	}

	return &p.Quiz.Questions[0], nil
}

// SubmitAnswer scores one quiz answer. The final answer closes the quiz,
// advances the lesson index and clears the completion flag so the next
// lesson starts gated again.
func (g *Gate) SubmitAnswer(p *domain.Profile, key string) (*AnswerResult, error) {
	if p.Killed {
		return nil, ErrKilled
	}
	if !p.HasActiveQuiz() {
		return nil, ErrNoActiveQuiz
	}

	quiz := p.Quiz
	question := quiz.Questions[quiz.QuestionIndex]

	result := &AnswerResult{
		Correct:     key == question.Answer,
		Explanation: question.Explanation,
	}
	if result.Correct {
		quiz.Score++
	}

	quiz.QuestionIndex++
	if quiz.QuestionIndex < len(quiz.Questions) {
		result.NextQuestion = &quiz.Questions[quiz.QuestionIndex]
		return result, nil
	}

	result.Finished = true
	result.Score = quiz.Score
	result.Total = len(quiz.Questions)

	p.Quiz = nil
	p.PendingLesson = nil
	p.LessonCompleted = false
	p.CurrentLessonIndex++

	if p.CurrentLessonIndex >= g.catalog.LessonCount(p.Level, p.Access) {
		result.LevelComplete = true
		g.transition(p, StateQuiz, StateLevelComplete)
	} else {
		g.transition(p, StateQuiz, StateLesson)
	}

	g.log.Info("quiz finished",
		"user_id", p.UserID,
		"lesson_id", quiz.LessonID,
		"score", result.Score,
		"total", result.Total,
		"level_complete", result.LevelComplete)

	return result, nil
}

// AdvanceLevel moves the user to the next curriculum tier after a level is
// finished. Free users cannot enter a tier with no free lessons.
func (g *Gate) AdvanceLevel(p *domain.Profile) (domain.Level, error) {
	if p.Killed {
		return "", ErrKilled
	}
	if p.CurrentLessonIndex < g.catalog.LessonCount(p.Level, p.Access) {
		return "", ErrNotCurrentLesson
	}

	next, ok := p.Level.Next()
	if !ok {
		return "", ErrCourseComplete
	}
	if g.catalog.LessonCount(next, p.Access) == 0 {
		return "", ErrPremiumLocked
	}

	g.transition(p, StateLevelComplete, StateLesson)
	p.Level = next
	p.CurrentLessonIndex = 0
	p.LessonCompleted = false
	p.PendingLesson = nil
	p.Quiz = nil

	g.log.Info("level advanced", "user_id", p.UserID, "level", next)

	return next, nil
}

// Kill shuts the assistant off for this user until /reset.
func (g *Gate) Kill(p *domain.Profile) {
	if p.Killed {
		return
	}

	g.transition(p, StateOf(p), StateKilled)
	p.Killed = true
	p.Quiz = nil
	p.Simulation = nil
	p.Challenge = nil
	p.PendingLesson = nil
	p.AssistantMode = false
}

// Revive clears the kill switch as part of a profile reset.
func (g *Gate) Revive(p *domain.Profile) {
	if !p.Killed {
		return
	}

	g.transition(p, StateKilled, StateLesson)
	p.Killed = false
}

func (g *Gate) transition(p *domain.Profile, from, to State) {
	if !IsTransitionAllowed(from, to) {
		g.log.Warn("unexpected flow transition", "user_id", p.UserID, "from", from, "to", to)
	}

	transitionRecorder(string(from), string(to))
}
