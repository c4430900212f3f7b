package handlers

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintrade/edubot/internal/domain"
)

func TestSimulationFullWalk(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 200)

	startCtx := &fakeContext{sender: user, text: "/simulate"}
	require.NoError(t, NewSimulateHandler(env)(startCtx))
	require.Len(t, startCtx.sent, 2, "intro plus direction prompt")
	assert.Contains(t, startCtx.sent[0], "Entry:")
	assert.Contains(t, startCtx.sent[1], "long or short")
	require.NotEmpty(t, startCtx.markups)

	dirCtx := callbackCtx(user, "simdir:long")
	require.NoError(t, NewDirectionCallback(env)(dirCtx))
	assert.Contains(t, dirCtx.lastSent(), "stop loss")

	input := NewSimulationInput(env)

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Simulation)
	entry := profile.Simulation.Entry

	stopCtx := &fakeContext{sender: user, text: formatTestPrice(entry * 0.95)}
	require.NoError(t, input(stopCtx))
	assert.Contains(t, stopCtx.lastSent(), "take profit")

	takeCtx := &fakeContext{sender: user, text: formatTestPrice(entry * 1.10)}
	require.NoError(t, input(takeCtx))
	assert.Contains(t, takeCtx.lastSent(), "risk")

	riskCtx := &fakeContext{sender: user, text: "1%"}
	require.NoError(t, input(riskCtx))
	assert.Contains(t, riskCtx.lastSent(), "Simulation recorded")

	profile, err = env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Simulation)
	assert.Equal(t, 1, profile.SimulationsDone)
}

func formatTestPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func TestSimulationRejectsWrongSidePlacements(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 205)

	require.NoError(t, NewSimulateHandler(env)(&fakeContext{sender: user, text: "/simulate"}))
	require.NoError(t, NewDirectionCallback(env)(callbackCtx(user, "simdir:long")))

	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	entry := profile.Simulation.Entry

	input := NewSimulationInput(env)

	// A long stop above entry never invalidates the trade.
	badStopCtx := &fakeContext{sender: user, text: formatTestPrice(entry * 1.05)}
	require.NoError(t, input(badStopCtx))
	assert.Contains(t, badStopCtx.lastSent(), "below your entry")

	goodStopCtx := &fakeContext{sender: user, text: formatTestPrice(entry * 0.95)}
	require.NoError(t, input(goodStopCtx))
	assert.Contains(t, goodStopCtx.lastSent(), "take profit")

	badTargetCtx := &fakeContext{sender: user, text: formatTestPrice(entry * 0.90)}
	require.NoError(t, input(badTargetCtx))
	assert.Contains(t, badTargetCtx.lastSent(), "above your entry")

	goodTargetCtx := &fakeContext{sender: user, text: formatTestPrice(entry * 1.20)}
	require.NoError(t, input(goodTargetCtx))
	assert.Contains(t, goodTargetCtx.lastSent(), "risk")

	badRiskCtx := &fakeContext{sender: user, text: "150"}
	require.NoError(t, input(badRiskCtx))
	assert.Contains(t, badRiskCtx.lastSent(), "realistic risk percent")

	profile, err = env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Simulation, "rejected risk keeps the simulation open")
}

func TestSimulationTextBeforeDirection(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 201)

	require.NoError(t, NewSimulateHandler(env)(&fakeContext{sender: user, text: "/simulate"}))

	// Free text while direction buttons are showing re-prompts with buttons
	// instead of failing number parsing.
	textCtx := &fakeContext{sender: user, text: "I think long"}
	require.NoError(t, NewSimulationInput(env)(textCtx))
	assert.Contains(t, textCtx.lastSent(), "long or short")
	require.NotEmpty(t, textCtx.markups)
}

func TestSimulationRejectsGarbageNumbers(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 202)

	require.NoError(t, NewSimulateHandler(env)(&fakeContext{sender: user, text: "/simulate"}))
	require.NoError(t, NewDirectionCallback(env)(callbackCtx(user, "simdir:short")))

	badCtx := &fakeContext{sender: user, text: "around ninety"}
	require.NoError(t, NewSimulationInput(env)(badCtx))
	assert.Contains(t, badCtx.lastSent(), "send a number")

	// The stage does not advance on bad input.
	profile, err := env.Sessions.Peek(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Simulation)
	assert.Equal(t, domain.StageStopLoss, profile.Simulation.Stage)
}

func TestSimulationInputWithoutSession(t *testing.T) {
	env := testEnv(t)
	user := englishLearner(t, env, 203)

	idleCtx := &fakeContext{sender: user, text: "100"}
	require.NoError(t, NewSimulationInput(env)(idleCtx))
	assert.Contains(t, idleCtx.lastSent(), "No simulation is running")
}

func TestPlanFeedbackGrading(t *testing.T) {
	env := testEnv(t)
	translator := env.I18n.Translator("en")

	goodPlan := &domain.SimulationRecord{Entry: 100, StopLoss: 98, TakeProfit: 106}
	assert.Contains(t, planFeedback(translator, goodPlan, 1), "Solid plan")

	thinReward := &domain.SimulationRecord{Entry: 100, StopLoss: 98, TakeProfit: 101}
	assert.Contains(t, planFeedback(translator, thinReward, 1), "aggressive")

	oversized := &domain.SimulationRecord{Entry: 100, StopLoss: 98, TakeProfit: 106}
	assert.Contains(t, planFeedback(translator, oversized, 10), "aggressive")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"105.50", 105.50, false},
		{"105,50", 105.50, false},
		{"2%", 2, false},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}
