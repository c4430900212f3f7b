package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/generation"
	"github.com/sintrade/edubot/internal/progress"
	"github.com/sintrade/edubot/internal/session"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	progressTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_transitions_total",
			Help: "Total number of learning flow transitions",
		},
		[]string{"from", "to"},
	)
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_requests_total",
			Help: "Content generation requests labeled by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of stored learner sessions",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_state",
			Help: "Number of learner sessions per flow state",
		},
		[]string{"state"},
	)
)

var trackedStates = []progress.State{
	progress.StateLesson,
	progress.StateLessonComplete,
	progress.StateQuiz,
	progress.StateKilled,
}

func init() {
	progress.RegisterTransitionRecorder(RecordProgressTransition)
	generation.RegisterRequestRecorder(RecordGenerationRequest)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordProgressTransition tracks learning flow transitions.
func RecordProgressTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	progressTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordGenerationRequest tracks content generation by kind and outcome.
func RecordGenerationRequest(kind, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}

	generationRequestsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// SetActiveSessions updates the gauge for currently stored sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// SetSessionsByState updates the gauge for the given flow state.
func SetSessionsByState(state string, count int) {
	if state == "" {
		state = "unknown"
	}

	sessionsByState.WithLabelValues(state).Set(float64(count))
}

// SessionCollector periodically gathers flow state counts from the session
// store and emits gauge metrics.
type SessionCollector struct {
	sessions *session.Manager
}

// NewSessionCollector builds a metrics collector bound to the session manager.
func NewSessionCollector(sessions *session.Manager) *SessionCollector {
	return &SessionCollector{sessions: sessions}
}

// Run polls the store every 10 seconds, updating session gauges until ctx is
// cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *SessionCollector) collect(ctx context.Context) error {
	total := 0
	stateCounts := make(map[string]int)

	err := c.sessions.ForEach(ctx, func(profile *domain.Profile) error {
		total++
		stateCounts[string(progress.StateOf(profile))]++
		return nil
	})
	if err != nil {
		return err
	}

	SetActiveSessions(total)

	sessionsByState.Reset()

	for _, tracked := range trackedStates {
		label := string(tracked)
		SetSessionsByState(label, stateCounts[label])
		delete(stateCounts, label)
	}

	for label, count := range stateCounts {
		SetSessionsByState(label, count)
	}

	return nil
}
