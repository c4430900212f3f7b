package generation

import (
	"context"
	"math/rand"
	"sync"

	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/domain"
)

// StaticProvider serves bundled catalog content. It never fails for lesson,
// quiz, simulation or challenge requests as long as the catalog loaded.
type StaticProvider struct {
	catalog *content.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStaticProvider creates a catalog-backed provider. A zero seed uses a
// time-based source.
func NewStaticProvider(catalog *content.Catalog, seed int64) *StaticProvider {
	var src rand.Source
	if seed == 0 {
		src = rand.NewSource(rand.Int63())
	} else {
		src = rand.NewSource(seed)
	}

	return &StaticProvider{
		catalog: catalog,
		rng:     rand.New(src),
	}
}

// Lesson returns the catalog lesson at the requested curriculum position.
func (p *StaticProvider) Lesson(_ context.Context, req LessonRequest) (*domain.Lesson, error) {
	lessons := p.catalog.Lessons(req.Level, req.Access)
	if len(lessons) == 0 {
		return nil, ErrUnavailable
	}

	index := req.LessonNumber - 1
	if index < 0 {
		index = 0
	}
	if index >= len(lessons) {
		index = len(lessons) - 1
	}

	lesson := lessons[index]
	return &lesson, nil
}

// Quiz builds a question variant the user has not seen before, falling back
// to the lesson's base questions when no profile is available.
func (p *StaticProvider) Quiz(_ context.Context, req QuizRequest) ([]domain.QuizQuestion, error) {
	if req.Lesson == nil || len(req.Lesson.Quiz) == 0 {
		return nil, ErrUnavailable
	}
	if req.Profile == nil {
		return req.Lesson.Quiz, nil
	}

	p.mu.Lock()
	questions := content.BuildQuizVariant(req.Lesson, req.Profile, p.rng)
	p.mu.Unlock()

	if len(questions) == 0 {
		return req.Lesson.Quiz, nil
	}
	return questions, nil
}

// Simulation returns a random bundled scenario.
func (p *StaticProvider) Simulation(_ context.Context, _ ScenarioRequest) (*domain.SimulationScenario, error) {
	p.mu.Lock()
	scenario := p.catalog.RandomSimulation(p.rng)
	p.mu.Unlock()

	return &scenario, nil
}

// Challenge returns a random bundled daily challenge.
func (p *StaticProvider) Challenge(_ context.Context, _ ScenarioRequest) (*domain.Challenge, error) {
	p.mu.Lock()
	challenge := p.catalog.RandomChallenge(p.rng)
	p.mu.Unlock()

	return &challenge, nil
}

// Answer has no static equivalent. Free-form questions need the backend.
func (p *StaticProvider) Answer(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}
