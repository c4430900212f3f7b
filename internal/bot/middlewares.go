package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/handlers"
	errors "github.com/sintrade/edubot/internal/errors"
	"github.com/sintrade/edubot/internal/i18n"
	"github.com/sintrade/edubot/internal/session"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ حدث خطأ. حاول لاحقًا."
					if errHandler != nil {
						appErr := errors.NewStorageError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *errors.Handler, translations *i18n.Manager) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "حدث خطأ. حاول لاحقًا."
			if translations != nil {
				userMsg = translations.Translator("").T("errors.generic")
			}
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = cb.Data
				} else {
					action = c.Text()
				}
			}

			log.Info("handling update", slog.Int64("user_id", userID), slog.String("action", action))
			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// KillSwitchMiddleware blocks every interaction of a paused learner except the
// commands that allow them to come back.
func KillSwitchMiddleware(sessions *session.Manager, translations *i18n.Manager, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if sessions == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			if killExempt(c.Text()) {
				return next(c)
			}

			profile, err := sessions.Peek(context.Background(), c.Sender().ID)
			if err != nil {
				log.Error("failed to load profile for kill check", slog.Int64("user_id", c.Sender().ID), slog.Any("error", err))
				return next(c)
			}

			if profile == nil || !profile.Killed {
				return next(c)
			}

			t := translations.Translator(profile.Language)

			if cb := c.Callback(); cb != nil {
				_ = c.Respond(&telebot.CallbackResponse{})
			}

			return c.Send(t.T("lesson.killed"))
		}
	}
}

func killExempt(text string) bool {
	command := text
	if i := strings.IndexAny(command, " @"); i >= 0 {
		command = command[:i]
	}

	return command == CommandReset || command == CommandStart || command == CommandStatus
}
