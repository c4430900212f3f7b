package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestMaskingHandlerHidesSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.Info("connecting", "token", "123:secret-token", "user_id", 7)

	output := buf.String()
	assert.NotContains(t, output, "secret-token")
	assert.Contains(t, output, "***")
	assert.Contains(t, output, "user_id=7")
}

func TestTeeHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	handler := newTeeHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)

	log := slog.New(handler)
	log.Info("hello")

	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, b.String(), "hello")
}

func TestNewRespectsLevel(t *testing.T) {
	log, level := New(Options{Level: "warn"})
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))

	level.Set(slog.LevelDebug)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewWithSentryTee(t *testing.T) {
	log, _ := New(Options{Level: "info", SentryEnabled: true})

	assert.NotPanics(t, func() {
		log.Error("sentry tee smoke", "component", "test")
	})
}
