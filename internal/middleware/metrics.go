package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/bot/handlers"
	"github.com/sintrade/edubot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		command := ExtractCommandName(c)
		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(command, status, time.Since(start))

		return err
	}
}

// ExtractCommandName reduces an update to a low-cardinality label. Commands
// keep their name, callbacks keep their prefix and free text collapses to one
// bucket.
func ExtractCommandName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		data := strings.TrimSpace(cb.Data)
		if idx := strings.Index(data, ":"); idx > 0 {
			return "cb:" + data[:idx]
		}
		return "cb:" + data
	}

	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/") {
		if idx := strings.IndexAny(text, " @"); idx > 0 {
			text = text[:idx]
		}
		return text
	}

	if text != "" {
		return "text"
	}

	return "unknown"
}
