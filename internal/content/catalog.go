// Package content holds the bundled curriculum: lessons, quiz banks,
// simulation scenarios, and daily challenges. The catalog is read-only at
// runtime.
package content

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/sintrade/edubot/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Levels      map[string][]domain.Lesson  `yaml:"levels"`
	Simulations []domain.SimulationScenario `yaml:"simulations"`
	Challenges  []domain.Challenge          `yaml:"challenges"`
}

// Catalog exposes the bundled curriculum.
type Catalog struct {
	levels      map[domain.Level][]domain.Lesson
	simulations []domain.SimulationScenario
	challenges  []domain.Challenge
}

// Load parses the embedded catalog and validates its structure.
func Load() (*Catalog, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(catalogYAML, &raw); err != nil {
		return nil, fmt.Errorf("content: parse catalog: %w", err)
	}

	levels := make(map[domain.Level][]domain.Lesson, len(raw.Levels))
	for rawLevel, lessons := range raw.Levels {
		level, ok := domain.ParseLevel(rawLevel)
		if !ok {
			return nil, fmt.Errorf("content: unknown level %q in catalog", rawLevel)
		}

		for i := range lessons {
			lessons[i].Level = level
			if lessons[i].ID == "" {
				return nil, fmt.Errorf("content: lesson %d of level %s has no id", i, level)
			}
			for _, q := range lessons[i].Quiz {
				if _, ok := q.Options[q.Answer]; !ok {
					return nil, fmt.Errorf("content: lesson %s question %q has answer %q outside its options", lessons[i].ID, q.Prompt, q.Answer)
				}
			}
		}
		levels[level] = lessons
	}

	if len(raw.Simulations) == 0 {
		return nil, fmt.Errorf("content: catalog has no simulation scenarios")
	}
	if len(raw.Challenges) == 0 {
		return nil, fmt.Errorf("content: catalog has no daily challenges")
	}

	return &Catalog{
		levels:      levels,
		simulations: raw.Simulations,
		challenges:  raw.Challenges,
	}, nil
}

// Lessons returns the lessons of a level visible to the given access tier.
func (c *Catalog) Lessons(level domain.Level, access domain.Access) []domain.Lesson {
	all := c.levels[level]
	if access == domain.AccessPremium {
		return all
	}

	visible := make([]domain.Lesson, 0, len(all))
	for _, lesson := range all {
		if !lesson.PremiumOnly {
			visible = append(visible, lesson)
		}
	}
	return visible
}

// Lesson returns the lesson at index within the level's visible sequence.
func (c *Catalog) Lesson(level domain.Level, access domain.Access, index int) (*domain.Lesson, bool) {
	lessons := c.Lessons(level, access)
	if index < 0 || index >= len(lessons) {
		return nil, false
	}

	lesson := lessons[index]
	return &lesson, true
}

// LessonCount returns how many lessons the access tier sees at a level.
func (c *Catalog) LessonCount(level domain.Level, access domain.Access) int {
	return len(c.Lessons(level, access))
}

// RandomSimulation picks a bundled simulation scenario.
func (c *Catalog) RandomSimulation(rng *rand.Rand) domain.SimulationScenario {
	return c.simulations[intn(rng, len(c.simulations))]
}

// RandomChallenge picks a bundled daily challenge.
func (c *Catalog) RandomChallenge(rng *rand.Rand) domain.Challenge {
	return c.challenges[intn(rng, len(c.challenges))]
}

// Challenges returns every bundled daily challenge.
func (c *Catalog) Challenges() []domain.Challenge {
	return c.challenges
}

func intn(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	if rng == nil {
		return rand.Intn(n)
	}
	return rng.Intn(n)
}
