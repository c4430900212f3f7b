package domain

import "strings"

// DynamicLessonPrefix marks lesson IDs produced by the generation backend.
const DynamicLessonPrefix = "AI-"

// QuizQuestion is a single multiple-choice question with options keyed A-D.
type QuizQuestion struct {
	Prompt      string            `json:"prompt" yaml:"prompt"`
	Options     map[string]string `json:"options" yaml:"options"`
	Answer      string            `json:"answer" yaml:"answer"`
	Explanation string            `json:"explanation" yaml:"explanation"`
}

// OptionKeys lists quiz option keys in presentation order.
var OptionKeys = []string{"A", "B", "C", "D"}

// Lesson is one unit of curriculum content with its question bank.
type Lesson struct {
	ID           string         `json:"id" yaml:"id"`
	Level        Level          `json:"level" yaml:"level"`
	Title        string         `json:"title" yaml:"title"`
	Objective    string         `json:"objective" yaml:"objective"`
	BulletPoints []string       `json:"bullet_points" yaml:"bullet_points"`
	Example      string         `json:"example" yaml:"example"`
	PremiumOnly  bool           `json:"premium_only" yaml:"premium_only"`
	Quiz         []QuizQuestion `json:"quiz" yaml:"quiz"`
}

// Dynamic reports whether the lesson was produced by the generation backend.
func (l *Lesson) Dynamic() bool {
	return l != nil && strings.HasPrefix(l.ID, DynamicLessonPrefix)
}

// SimulationScenario is a static trade-planning setup.
type SimulationScenario struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Entry      float64 `json:"entry" yaml:"entry"`
	Support    float64 `json:"support" yaml:"support"`
	Resistance float64 `json:"resistance" yaml:"resistance"`
	Context    string  `json:"context,omitempty" yaml:"context,omitempty"`
}

// Challenge is a daily analysis prompt with the keywords a good answer hits.
type Challenge struct {
	Prompt           string   `json:"prompt" yaml:"prompt"`
	ExpectedKeywords []string `json:"expected_keywords" yaml:"expected_keywords"`
}
