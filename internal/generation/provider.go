// Package generation produces dynamic lesson, quiz, simulation and challenge
// content from a language-model backend, with a static catalog fallback when
// the backend is unconfigured or unavailable.
package generation

import (
	"context"
	"errors"

	"github.com/sintrade/edubot/internal/domain"
)

var (
	// ErrUnavailable indicates that no backend could produce the content.
	ErrUnavailable = errors.New("generation backend unavailable")
	// ErrSuspended indicates that the backend is in a cool-off window after a failure.
	ErrSuspended = errors.New("generation backend suspended")
	// ErrEmptyContent indicates that the backend replied without usable content.
	ErrEmptyContent = errors.New("empty completion content")
	// ErrInvalidJSON indicates that the backend reply could not be parsed.
	ErrInvalidJSON = errors.New("completion is not valid JSON")
)

// systemPrompts anchor every completion to the educational, no-advice stance.
var systemPrompts = map[string]string{
	"ar": "أنت Sin Trade AI، مساعد تعليمي في التداول. " +
		"لا تقدم نصائح مالية مباشرة، ولا تضمن الأرباح. " +
		"أكد دائمًا على إدارة المخاطر والانضباط.",
	"en": "You are Sin Trade AI, an educational trading assistant. " +
		"Do not provide direct financial advice and never guarantee profits. " +
		"Always emphasize risk management and discipline.",
}

// promptLanguage narrows a profile language to one the prompts support.
func promptLanguage(language string) string {
	if _, ok := systemPrompts[language]; ok {
		return language
	}
	return "ar"
}

// LessonRequest describes the lesson to generate.
type LessonRequest struct {
	Level        domain.Level
	Access       domain.Access
	Focus        domain.Focus
	Language     string
	LessonNumber int
	TotalLessons int

	// RecentTitles and RecentQuestions steer the model away from repeats.
	RecentTitles    []string
	RecentQuestions []string
}

// QuizRequest describes the quiz to generate for a lesson.
type QuizRequest struct {
	Lesson   *domain.Lesson
	Focus    domain.Focus
	Language string
	Count    int

	// Profile lets the static backend pick a variant the user has not seen.
	Profile *domain.Profile

	RecentQuestions []string
}

// ScenarioRequest describes a simulation or daily challenge to generate.
type ScenarioRequest struct {
	Level    domain.Level
	Focus    domain.Focus
	Language string
}

// Provider produces educational content. Implementations must make at most
// one outbound attempt per call; retries and fallback belong to the caller.
type Provider interface {
	Lesson(ctx context.Context, req LessonRequest) (*domain.Lesson, error)
	Quiz(ctx context.Context, req QuizRequest) ([]domain.QuizQuestion, error)
	Simulation(ctx context.Context, req ScenarioRequest) (*domain.SimulationScenario, error)
	Challenge(ctx context.Context, req ScenarioRequest) (*domain.Challenge, error)
	Answer(ctx context.Context, question, language string) (string, error)
}

var requestRecorder = func(kind, outcome string) {}

// RegisterRequestRecorder allows external packages to observe content requests
// by kind (lesson, quiz, simulation, challenge, answer) and outcome (remote,
// fallback, static, error).
func RegisterRequestRecorder(recorder func(kind, outcome string)) {
	if recorder == nil {
		requestRecorder = func(string, string) {}
		return
	}

	requestRecorder = recorder
}
