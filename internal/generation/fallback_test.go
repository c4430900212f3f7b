package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingProvider simulates a remote backend that is always down.
type failingProvider struct {
	calls int
}

func (p *failingProvider) Lesson(context.Context, LessonRequest) (*domain.Lesson, error) {
	p.calls++
	return nil, ErrUnavailable
}

func (p *failingProvider) Quiz(context.Context, QuizRequest) ([]domain.QuizQuestion, error) {
	p.calls++
	return nil, ErrSuspended
}

func (p *failingProvider) Simulation(context.Context, ScenarioRequest) (*domain.SimulationScenario, error) {
	p.calls++
	return nil, errors.New("boom")
}

func (p *failingProvider) Challenge(context.Context, ScenarioRequest) (*domain.Challenge, error) {
	p.calls++
	return nil, ErrUnavailable
}

func (p *failingProvider) Answer(context.Context, string, string) (string, error) {
	p.calls++
	return "", ErrUnavailable
}

func newStatic(t *testing.T) *StaticProvider {
	t.Helper()

	catalog, err := content.Load()
	require.NoError(t, err)

	return NewStaticProvider(catalog, 1)
}

func TestFallback_ServesStaticWhenRemoteFails(t *testing.T) {
	remote := &failingProvider{}
	fallback := NewFallback(remote, newStatic(t), testLogger())
	ctx := context.Background()

	lesson, err := fallback.Lesson(ctx, LessonRequest{
		Level:        domain.LevelBeginner,
		Access:       domain.AccessFree,
		LessonNumber: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.ID)
	assert.False(t, lesson.Dynamic())

	scenario, err := fallback.Simulation(ctx, ScenarioRequest{Level: domain.LevelBeginner})
	require.NoError(t, err)
	assert.NotEmpty(t, scenario.Symbol)

	challenge, err := fallback.Challenge(ctx, ScenarioRequest{Level: domain.LevelBeginner})
	require.NoError(t, err)
	assert.NotEmpty(t, challenge.Prompt)

	assert.Equal(t, 3, remote.calls)
}

func TestFallback_StaticOnlyWithoutRemote(t *testing.T) {
	fallback := NewFallback(nil, newStatic(t), testLogger())
	ctx := context.Background()

	assert.False(t, fallback.Dynamic())

	lesson, err := fallback.Lesson(ctx, LessonRequest{
		Level:        domain.LevelBeginner,
		Access:       domain.AccessFree,
		LessonNumber: 1,
	})
	require.NoError(t, err)
	assert.NotNil(t, lesson)

	_, err = fallback.Answer(ctx, "what is risk?", "en")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFallback_QuizUsesProfileVariants(t *testing.T) {
	fallback := NewFallback(&failingProvider{}, newStatic(t), testLogger())
	ctx := context.Background()

	catalog, err := content.Load()
	require.NoError(t, err)
	lessons := catalog.Lessons(domain.LevelBeginner, domain.AccessFree)
	require.NotEmpty(t, lessons)

	profile := domain.NewProfile(1)
	questions, err := fallback.Quiz(ctx, QuizRequest{
		Lesson:  &lessons[0],
		Profile: profile,
		Count:   3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, questions)
	assert.NotEmpty(t, profile.VariantHistory[lessons[0].ID])
}

func TestStaticProvider_LessonOutOfRangeClamps(t *testing.T) {
	static := newStatic(t)

	lesson, err := static.Lesson(context.Background(), LessonRequest{
		Level:        domain.LevelBeginner,
		Access:       domain.AccessFree,
		LessonNumber: 99,
	})
	require.NoError(t, err)
	assert.NotNil(t, lesson)
}

func TestStaticProvider_PremiumLevelLockedForFree(t *testing.T) {
	static := newStatic(t)

	_, err := static.Lesson(context.Background(), LessonRequest{
		Level:        domain.LevelProfessional,
		Access:       domain.AccessFree,
		LessonNumber: 1,
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}
