// Package domain defines the core data model shared across the bot.
package domain

import "time"

// Level is the curriculum tier a learner is working through.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelProfessional Level = "professional"
)

// LevelOrder lists curriculum tiers from first to last.
var LevelOrder = []Level{
	LevelBeginner,
	LevelIntermediate,
	LevelAdvanced,
	LevelProfessional,
}

// ParseLevel validates a raw level value.
func ParseLevel(raw string) (Level, bool) {
	for _, level := range LevelOrder {
		if string(level) == raw {
			return level, true
		}
	}
	return "", false
}

// Next returns the tier that follows l, or false when l is the last one.
func (l Level) Next() (Level, bool) {
	for i, level := range LevelOrder {
		if level == l && i+1 < len(LevelOrder) {
			return LevelOrder[i+1], true
		}
	}
	return "", false
}

// Access gates premium-only content.
type Access string

const (
	AccessFree    Access = "free"
	AccessPremium Access = "premium"
)

// ParseAccess validates a raw access value.
func ParseAccess(raw string) (Access, bool) {
	switch Access(raw) {
	case AccessFree, AccessPremium:
		return Access(raw), true
	}
	return "", false
}

// Focus filters content by market type.
type Focus string

const (
	FocusSpot    Focus = "spot"
	FocusFutures Focus = "futures"
	FocusBoth    Focus = "both"
)

// ParseFocus validates a raw focus value.
func ParseFocus(raw string) (Focus, bool) {
	switch Focus(raw) {
	case FocusSpot, FocusFutures, FocusBoth:
		return Focus(raw), true
	}
	return "", false
}

// SimulationStage identifies the question a simulation is waiting on.
type SimulationStage string

const (
	StageDirection   SimulationStage = "direction"
	StageStopLoss    SimulationStage = "stop_loss"
	StageTakeProfit  SimulationStage = "take_profit"
	StageRiskPercent SimulationStage = "risk_percent"
)

// QuizRecord tracks an in-flight quiz for a profile.
type QuizRecord struct {
	LessonID      string         `json:"lesson_id"`
	LessonIndex   int            `json:"lesson_index"`
	Level         Level          `json:"level"`
	Questions     []QuizQuestion `json:"questions"`
	QuestionIndex int            `json:"question_index"`
	Score         int            `json:"score"`
	Dynamic       bool           `json:"dynamic"`
}

// SimulationRecord tracks an in-flight trade-planning simulation.
type SimulationRecord struct {
	Symbol     string          `json:"symbol"`
	Entry      float64         `json:"entry"`
	Support    float64         `json:"support"`
	Resistance float64         `json:"resistance"`
	Context    string          `json:"context,omitempty"`
	Stage      SimulationStage `json:"stage"`
	Direction  string          `json:"direction,omitempty"`
	StopLoss   float64         `json:"stop_loss,omitempty"`
	TakeProfit float64         `json:"take_profit,omitempty"`
}

// ChallengeRecord tracks a daily challenge awaiting the learner's analysis.
type ChallengeRecord struct {
	Prompt           string   `json:"prompt"`
	ExpectedKeywords []string `json:"expected_keywords"`
}

// Profile is the per-user record of curriculum progress and preferences.
type Profile struct {
	UserID   int64  `json:"user_id"`
	Level    Level  `json:"level"`
	Access   Access `json:"access"`
	Focus    Focus  `json:"focus"`
	Language string `json:"language"`

	CurrentLessonIndex int               `json:"current_lesson_index"`
	LessonCompleted    bool              `json:"lesson_completed"`
	PendingLesson      *Lesson           `json:"pending_lesson,omitempty"`
	Quiz               *QuizRecord       `json:"quiz,omitempty"`
	Simulation         *SimulationRecord `json:"simulation,omitempty"`
	Challenge          *ChallengeRecord  `json:"challenge,omitempty"`

	Killed        bool `json:"killed"`
	AssistantMode bool `json:"assistant_mode"`

	SimulationsDone int `json:"simulations_done"`
	ChallengesDone  int `json:"challenges_done"`

	// VariantHistory records quiz variant signatures already served per
	// lesson so repeat attempts get different question variants.
	VariantHistory map[string][]string `json:"variant_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates a profile with default preferences for a new user.
func NewProfile(userID int64) *Profile {
	now := time.Now().UTC()

	return &Profile{
		UserID:    userID,
		Level:     LevelBeginner,
		Access:    AccessFree,
		Focus:     FocusBoth,
		Language:  "ar",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasActiveQuiz reports whether a quiz is waiting for an answer.
func (p *Profile) HasActiveQuiz() bool {
	return p != nil && p.Quiz != nil
}

// HasActiveSimulation reports whether a simulation is waiting for input.
func (p *Profile) HasActiveSimulation() bool {
	return p != nil && p.Simulation != nil
}

// HasActiveChallenge reports whether a daily challenge is awaiting analysis.
func (p *Profile) HasActiveChallenge() bool {
	return p != nil && p.Challenge != nil
}

// RecordVariants appends served quiz variant signatures for a lesson.
func (p *Profile) RecordVariants(lessonID string, signatures []string) {
	if p == nil || len(signatures) == 0 {
		return
	}

	if p.VariantHistory == nil {
		p.VariantHistory = make(map[string][]string)
	}
	p.VariantHistory[lessonID] = append(p.VariantHistory[lessonID], signatures...)
}

// HasVariant reports whether the signature was already served for the lesson.
func (p *Profile) HasVariant(lessonID, signature string) bool {
	if p == nil || p.VariantHistory == nil {
		return false
	}

	for _, s := range p.VariantHistory[lessonID] {
		if s == signature {
			return true
		}
	}
	return false
}

// ClearVariants drops the variant history for a lesson once it is exhausted.
func (p *Profile) ClearVariants(lessonID string) {
	if p == nil || p.VariantHistory == nil {
		return
	}
	delete(p.VariantHistory, lessonID)
}
