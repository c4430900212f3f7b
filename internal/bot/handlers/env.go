package handlers

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/keyboard"
	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/generation"
	"github.com/sintrade/edubot/internal/i18n"
	"github.com/sintrade/edubot/internal/progress"
	"github.com/sintrade/edubot/internal/session"
)

// Env bundles the services every learning-flow handler works against.
type Env struct {
	Sessions *session.Manager
	Gate     *progress.Gate
	Provider *generation.Fallback
	AI       *generation.OpenAIClient // nil when generation is disabled
	Catalog  *content.Catalog
	I18n     *i18n.Manager
	Keyboard *keyboard.Builder
	Redis    *goredis.Client // nil on the memory backend
	IsAdmin  func(userID int64) bool
	Log      *slog.Logger
}

// Translator resolves the translator for a profile's language preference.
func (e *Env) Translator(p *domain.Profile) i18n.Translator {
	lang := ""
	if p != nil {
		lang = p.Language
	}
	return e.I18n.Translator(lang)
}

// update runs fn against the sender's profile under the per-user lock.
func (e *Env) update(c telebot.Context, fn func(p *domain.Profile) error) (*domain.Profile, error) {
	return e.Sessions.Update(context.Background(), c.Sender().ID, fn)
}

// peek loads the sender's profile without locking it.
func (e *Env) peek(c telebot.Context) (*domain.Profile, error) {
	return e.Sessions.Peek(context.Background(), c.Sender().ID)
}
