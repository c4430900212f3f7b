package generation

import (
	"context"
	"log/slog"

	"github.com/sintrade/edubot/internal/domain"
)

// Fallback tries the remote backend first and silently serves static catalog
// content when the backend is unconfigured, suspended or failing. Users never
// see a generation error for lesson, quiz, simulation or challenge content.
type Fallback struct {
	remote Provider
	static *StaticProvider
	log    *slog.Logger
}

// NewFallback wraps the optional remote backend over the static provider.
// Remote may be nil when no API key is configured.
func NewFallback(remote Provider, static *StaticProvider, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.Default()
	}

	return &Fallback{
		remote: remote,
		static: static,
		log:    log,
	}
}

// Dynamic reports whether a remote backend is configured at all.
func (f *Fallback) Dynamic() bool {
	return f.remote != nil
}

func (f *Fallback) Lesson(ctx context.Context, req LessonRequest) (*domain.Lesson, error) {
	if f.remote != nil {
		lesson, err := f.remote.Lesson(ctx, req)
		if err == nil {
			requestRecorder("lesson", "remote")
			return lesson, nil
		}
		f.log.Debug("remote lesson generation failed, serving static", "error", err)
		requestRecorder("lesson", "fallback")
	} else {
		requestRecorder("lesson", "static")
	}

	return f.static.Lesson(ctx, req)
}

func (f *Fallback) Quiz(ctx context.Context, req QuizRequest) ([]domain.QuizQuestion, error) {
	if f.remote != nil {
		questions, err := f.remote.Quiz(ctx, req)
		if err == nil {
			requestRecorder("quiz", "remote")
			return questions, nil
		}
		f.log.Debug("remote quiz generation failed, serving static", "error", err)
		requestRecorder("quiz", "fallback")
	} else {
		requestRecorder("quiz", "static")
	}

	return f.static.Quiz(ctx, req)
}

func (f *Fallback) Simulation(ctx context.Context, req ScenarioRequest) (*domain.SimulationScenario, error) {
	if f.remote != nil {
		scenario, err := f.remote.Simulation(ctx, req)
		if err == nil {
			requestRecorder("simulation", "remote")
			return scenario, nil
		}
		f.log.Debug("remote simulation generation failed, serving static", "error", err)
		requestRecorder("simulation", "fallback")
	} else {
		requestRecorder("simulation", "static")
	}

	return f.static.Simulation(ctx, req)
}

func (f *Fallback) Challenge(ctx context.Context, req ScenarioRequest) (*domain.Challenge, error) {
	if f.remote != nil {
		challenge, err := f.remote.Challenge(ctx, req)
		if err == nil {
			requestRecorder("challenge", "remote")
			return challenge, nil
		}
		f.log.Debug("remote challenge generation failed, serving static", "error", err)
		requestRecorder("challenge", "fallback")
	} else {
		requestRecorder("challenge", "static")
	}

	return f.static.Challenge(ctx, req)
}

// Answer has no static fallback. Callers show a friendly notice on error.
func (f *Fallback) Answer(ctx context.Context, question, language string) (string, error) {
	if f.remote == nil {
		requestRecorder("answer", "static")
		return "", ErrUnavailable
	}

	answer, err := f.remote.Answer(ctx, question, language)
	if err != nil {
		requestRecorder("answer", "error")
		return "", err
	}

	requestRecorder("answer", "remote")
	return answer, nil
}
