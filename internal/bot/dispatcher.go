package bot

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/handlers"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/session"
)

// Mode identifies which interaction currently claims a learner's free text.
type Mode string

const (
	ModeQuiz       Mode = "quiz"
	ModeSimulation Mode = "simulation"
	ModeChallenge  Mode = "challenge"
	ModeAssistant  Mode = "assistant"
	ModeIdle       Mode = "idle"
)

// Dispatcher routes free-text updates to the handler of the learner's
// active interaction. At most one interaction owns the text at a time;
// an active quiz wins because its answers arrive as buttons and stray
// text should only produce a hint.
type Dispatcher struct {
	sessions     *session.Manager
	modeHandlers map[Mode]handlers.Handler
	log          *slog.Logger
}

// NewDispatcher creates a Dispatcher with an empty handlers registry.
func NewDispatcher(sessions *session.Manager, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		sessions:     sessions,
		modeHandlers: make(map[Mode]handlers.Handler),
		log:          log,
	}
}

// RegisterModeHandler registers a handler for the provided interaction mode.
func (d *Dispatcher) RegisterModeHandler(m Mode, h handlers.Handler) {
	d.modeHandlers[m] = h
}

// Resolve picks the handler of the learner's active interaction, or nil
// when no interaction claims free text right now.
func (d *Dispatcher) Resolve(c telebot.Context) (handlers.Handler, error) {
	if c == nil || c.Sender() == nil {
		d.log.Warn("cannot dispatch without sender information")
		return nil, nil
	}

	profile, err := d.sessions.Peek(context.Background(), c.Sender().ID)
	if err != nil {
		return nil, err
	}

	mode := ModeOf(profile)
	if mode == ModeIdle {
		return nil, nil
	}

	handler := d.modeHandlers[mode]
	if handler == nil {
		d.log.Info("no handler registered for mode", "mode", string(mode), "user_id", c.Sender().ID)
	}

	return handler, nil
}

// ModeOf derives the active interaction mode from a profile.
func ModeOf(p *domain.Profile) Mode {
	switch {
	case p == nil:
		return ModeIdle
	case p.HasActiveQuiz():
		return ModeQuiz
	case p.HasActiveSimulation():
		return ModeSimulation
	case p.HasActiveChallenge():
		return ModeChallenge
	case p.AssistantMode:
		return ModeAssistant
	default:
		return ModeIdle
	}
}
