package progress

import "github.com/sintrade/edubot/internal/domain"

// State represents a position in the per-user learning flow.
type State string

const (
	// StateLesson indicates that the user is working through the current lesson.
	StateLesson State = "lesson"
	// StateLessonComplete indicates that the lesson was confirmed and a quiz may start.
	StateLessonComplete State = "lesson_complete"
	// StateQuiz indicates that a quiz is waiting for an answer.
	StateQuiz State = "quiz"
	// StateLevelComplete indicates that every lesson in the current level is done.
	StateLevelComplete State = "level_complete"
	// StateKilled indicates that the assistant was shut off for this user.
	StateKilled State = "killed"
)

// StateOf derives the flow state from a profile snapshot.
func StateOf(p *domain.Profile) State {
	switch {
	case p == nil:
		return StateLesson
	case p.Killed:
		return StateKilled
	case p.HasActiveQuiz():
		return StateQuiz
	case p.LessonCompleted:
		return StateLessonComplete
	default:
		return StateLesson
	}
}
