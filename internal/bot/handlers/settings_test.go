package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
)

func commandCtx(user *telebot.User, text, payload string) *fakeContext {
	return &fakeContext{
		sender:  user,
		text:    text,
		message: &telebot.Message{Payload: payload},
	}
}

func TestSetLevelResetsProgress(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 400)

	_, err := env.Sessions.Update(context.Background(), user.ID, func(p *domain.Profile) error {
		p.CurrentLessonIndex = 2
		p.LessonCompleted = true
		return nil
	})
	require.NoError(t, err)

	ctx := callbackCtx(user, "set:level:intermediate")
	require.NoError(t, NewSetCallback(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Level set to Intermediate")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelIntermediate, profile.Level)
	assert.Zero(t, profile.CurrentLessonIndex)
	assert.False(t, profile.LessonCompleted)
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 401)

	ctx := callbackCtx(user, "set:level:grandmaster")
	require.NoError(t, NewSetCallback(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Unknown level")
}

func TestSetLanguageConfirmsInNewLanguage(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 402)

	ctx := callbackCtx(user, "set:lang:ar")
	require.NoError(t, NewSetCallback(env)(ctx))
	require.NotEmpty(t, ctx.sent)
	assert.Contains(t, ctx.lastSent(), "العربية", "confirmation must be in the new language")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ar", profile.Language)
}

func TestSetFocus(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 403)

	ctx := callbackCtx(user, "set:focus:futures")
	require.NoError(t, NewSetCallback(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "futures")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FocusFutures, profile.Focus)
}

func TestSetAccessAdminOnly(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 404)

	ctx := commandCtx(user, "/setaccess premium", "premium")
	require.NoError(t, NewAccessHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Only admins")
}

func TestSetAccessByAdmin(t *testing.T) {
	env := testEnv(t)
	env.IsAdmin = func(id int64) bool { return id == 1 }
	admin := englishLearner(t, env, 1)

	ctx := commandCtx(admin, "/setaccess premium 405", "premium 405")
	require.NoError(t, NewAccessHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "premium")

	target, err := env.Sessions.Peek(context.Background(), 405)
	require.NoError(t, err)
	assert.Equal(t, domain.AccessPremium, target.Access)
}

func TestKillAndReset(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 406)

	killCtx := commandCtx(user, "/kill", "")
	require.NoError(t, NewKillHandler(env)(killCtx))
	assert.Contains(t, killCtx.lastSent(), "paused")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, profile.Killed)

	resetCtx := commandCtx(user, "/reset", "")
	require.NoError(t, NewResetHandler(env)(resetCtx))
	assert.Contains(t, resetCtx.lastSent(), "reset")

	profile, err = env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, profile.Killed)
	assert.Zero(t, profile.CurrentLessonIndex)
}

func TestSetLevelCommandAppliesArgument(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 408)

	_, err := env.Sessions.Update(context.Background(), user.ID, func(p *domain.Profile) error {
		p.CurrentLessonIndex = 3
		return nil
	})
	require.NoError(t, err)

	ctx := commandCtx(user, "/setlevel professional", "professional")
	require.NoError(t, NewLevelMenuHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Level set to Professional")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelProfessional, profile.Level)
	assert.Zero(t, profile.CurrentLessonIndex)
}

func TestSetLevelCommandRejectsUnknownArgument(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 409)

	ctx := commandCtx(user, "/setlevel grandmaster", "grandmaster")
	require.NoError(t, NewLevelMenuHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Unknown level")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelBeginner, profile.Level)
}

func TestSetLevelCommandWithoutArgumentShowsPicker(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 410)

	ctx := commandCtx(user, "/setlevel", "")
	require.NoError(t, NewLevelMenuHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Choose your level")
}

func TestSetFocusCommandAppliesArgument(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 411)

	ctx := commandCtx(user, "/setfocus futures", "futures")
	require.NoError(t, NewFocusMenuHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "futures")

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FocusFutures, profile.Focus)

	bad := commandCtx(user, "/setfocus forex", "forex")
	require.NoError(t, NewFocusMenuHandler(env)(bad))
	assert.Contains(t, bad.lastSent(), "Unknown focus")

	profile, err = env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FocusFutures, profile.Focus)
}

func TestStatusShowsProfileSummary(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 412)

	_, err := env.Sessions.Update(context.Background(), user.ID, func(p *domain.Profile) error {
		p.Level = domain.LevelIntermediate
		p.SimulationsDone = 2
		return nil
	})
	require.NoError(t, err)

	ctx := commandCtx(user, "/status", "")
	require.NoError(t, NewStatusHandler(env)(ctx))
	out := ctx.lastSent()
	assert.Contains(t, out, "Your state:")
	assert.Contains(t, out, "Level: Intermediate")
	assert.Contains(t, out, "Simulations done: 2")
}

func TestStatusIsIdempotent(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 413)

	before, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)

	first := commandCtx(user, "/status", "")
	require.NoError(t, NewStatusHandler(env)(first))
	second := commandCtx(user, "/status", "")
	require.NoError(t, NewStatusHandler(env)(second))
	assert.Equal(t, first.lastSent(), second.lastSent())

	after, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestKillOtherUserRequiresAdmin(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 407)

	ctx := commandCtx(user, "/kill 999", "999")
	require.NoError(t, NewKillHandler(env)(ctx))
	assert.Contains(t, ctx.lastSent(), "Only admins")

	target, err := env.Sessions.Peek(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, target.Killed)
}
