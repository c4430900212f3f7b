package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/domain"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()

	catalog, err := content.Load()
	require.NoError(t, err)

	return NewGate(catalog, nil)
}

func TestGateFullLessonCycle(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	lesson, err := gate.CurrentLesson(profile)
	require.NoError(t, err)
	require.Equal(t, 0, profile.CurrentLessonIndex)
	require.Same(t, lesson, profile.PendingLesson)

	completed, err := gate.CompleteLesson(profile, 0)
	require.NoError(t, err)
	require.Equal(t, lesson.ID, completed.ID)
	require.True(t, profile.LessonCompleted)

	first, err := gate.StartQuiz(profile, lesson.Quiz)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, StateQuiz, StateOf(profile))

	for profile.HasActiveQuiz() {
		question := profile.Quiz.Questions[profile.Quiz.QuestionIndex]
		result, err := gate.SubmitAnswer(profile, question.Answer)
		require.NoError(t, err)
		require.True(t, result.Correct)
	}

	require.Equal(t, 1, profile.CurrentLessonIndex)
	require.False(t, profile.LessonCompleted)
	require.Nil(t, profile.PendingLesson)
	require.Equal(t, StateLesson, StateOf(profile))
}

func TestGateQuizRequiresCompletedLesson(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	lesson, err := gate.CurrentLesson(profile)
	require.NoError(t, err)

	_, err = gate.StartQuiz(profile, lesson.Quiz)
	require.ErrorIs(t, err, ErrLessonNotCompleted)
}

func TestGateRejectsStaleCompletion(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)
	profile.CurrentLessonIndex = 1

	_, err := gate.CompleteLesson(profile, 0)
	require.ErrorIs(t, err, ErrNotCurrentLesson)
	require.False(t, profile.LessonCompleted)
}

func TestGateBlocksLessonDuringQuiz(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	lesson, err := gate.CurrentLesson(profile)
	require.NoError(t, err)
	_, err = gate.CompleteLesson(profile, 0)
	require.NoError(t, err)
	_, err = gate.StartQuiz(profile, lesson.Quiz)
	require.NoError(t, err)

	_, err = gate.CurrentLesson(profile)
	require.ErrorIs(t, err, ErrQuizActive)

	_, err = gate.CompleteLesson(profile, 0)
	require.ErrorIs(t, err, ErrQuizActive)
}

func TestGateWrongAnswerScoring(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	lesson, err := gate.CurrentLesson(profile)
	require.NoError(t, err)
	_, err = gate.CompleteLesson(profile, 0)
	require.NoError(t, err)
	_, err = gate.StartQuiz(profile, lesson.Quiz)
	require.NoError(t, err)

	total := len(profile.Quiz.Questions)
	for profile.HasActiveQuiz() {
		question := profile.Quiz.Questions[profile.Quiz.QuestionIndex]
		wrong := "A"
		if question.Answer == "A" {
			wrong = "B"
		}

		result, err := gate.SubmitAnswer(profile, wrong)
		require.NoError(t, err)
		require.False(t, result.Correct)
		require.NotEmpty(t, result.Explanation)

		if result.Finished {
			require.Zero(t, result.Score)
			require.Equal(t, total, result.Total)
		}
	}

	// A failed quiz still advances: the gate enforces completion, not mastery.
	require.Equal(t, 1, profile.CurrentLessonIndex)
}

func TestGateAnswerWithoutQuiz(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	_, err := gate.SubmitAnswer(profile, "A")
	require.ErrorIs(t, err, ErrNoActiveQuiz)
}

func TestGateLevelCompletion(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	var lastResult *AnswerResult
	for {
		lesson, err := gate.CurrentLesson(profile)
		if err != nil {
			require.ErrorIs(t, err, ErrLevelComplete)
			break
		}

		_, err = gate.CompleteLesson(profile, profile.CurrentLessonIndex)
		require.NoError(t, err)
		_, err = gate.StartQuiz(profile, lesson.Quiz)
		require.NoError(t, err)

		for profile.HasActiveQuiz() {
			question := profile.Quiz.Questions[profile.Quiz.QuestionIndex]
			lastResult, err = gate.SubmitAnswer(profile, question.Answer)
			require.NoError(t, err)
		}
	}

	require.NotNil(t, lastResult)
	require.True(t, lastResult.LevelComplete)

	next, err := gate.AdvanceLevel(profile)
	require.NoError(t, err)
	require.Equal(t, domain.LevelIntermediate, next)
	require.Equal(t, domain.LevelIntermediate, profile.Level)
	require.Equal(t, 0, profile.CurrentLessonIndex)
}

func TestGateAdvanceLevelPremiumLocked(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)
	profile.Level = domain.LevelAdvanced

	catalog, err := content.Load()
	require.NoError(t, err)
	profile.CurrentLessonIndex = catalog.LessonCount(domain.LevelAdvanced, domain.AccessFree)

	_, err = gate.AdvanceLevel(profile)
	require.ErrorIs(t, err, ErrPremiumLocked)
	require.Equal(t, domain.LevelAdvanced, profile.Level)
}

func TestGateAdvanceLevelCourseComplete(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)
	profile.Level = domain.LevelProfessional
	profile.Access = domain.AccessPremium

	catalog, err := content.Load()
	require.NoError(t, err)
	profile.CurrentLessonIndex = catalog.LessonCount(domain.LevelProfessional, domain.AccessPremium)

	_, err = gate.AdvanceLevel(profile)
	require.ErrorIs(t, err, ErrCourseComplete)
}

func TestGateKillSwitch(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	lesson, err := gate.CurrentLesson(profile)
	require.NoError(t, err)
	_, err = gate.CompleteLesson(profile, 0)
	require.NoError(t, err)
	_, err = gate.StartQuiz(profile, lesson.Quiz)
	require.NoError(t, err)

	gate.Kill(profile)
	require.True(t, profile.Killed)
	require.Nil(t, profile.Quiz)
	require.Equal(t, StateKilled, StateOf(profile))

	_, err = gate.CurrentLesson(profile)
	require.ErrorIs(t, err, ErrKilled)
	_, err = gate.SubmitAnswer(profile, "A")
	require.ErrorIs(t, err, ErrKilled)

	gate.Revive(profile)
	require.False(t, profile.Killed)

	_, err = gate.CurrentLesson(profile)
	require.NoError(t, err)
}

func TestGatePremiumLockedLevelForFreeUser(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)
	profile.Level = domain.LevelProfessional

	_, err := gate.CurrentLesson(profile)
	require.ErrorIs(t, err, ErrPremiumLocked)
}

func TestGateTransitionRecorderObservesFlow(t *testing.T) {
	gate := newTestGate(t)
	profile := domain.NewProfile(1)

	var recorded [][2]string
	RegisterTransitionRecorder(func(from, to string) {
		recorded = append(recorded, [2]string{from, to})
	})
	defer RegisterTransitionRecorder(nil)

	lesson, err := gate.CurrentLesson(profile)
	require.NoError(t, err)
	_, err = gate.CompleteLesson(profile, 0)
	require.NoError(t, err)
	_, err = gate.StartQuiz(profile, lesson.Quiz)
	require.NoError(t, err)

	require.Equal(t, [][2]string{
		{"lesson", "lesson_complete"},
		{"lesson_complete", "quiz"},
	}, recorded)
}
