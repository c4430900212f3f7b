package content

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/sintrade/edubot/internal/domain"
)

const (
	minVariantQuestions = 2
	maxVariantQuestions = 3
	maxVariantAttempts  = 300
)

type promptStyle struct {
	format       string
	withScenario bool
}

var promptStyles = map[string][]promptStyle{
	"en": {
		{format: "%s"},
		{format: "Knowledge check: %s"},
		{format: "Risk first: %s"},
		{format: "Execution check: %s"},
		{format: "Process review: %s"},
		{format: "Scenario focus: %[2]s %[1]s", withScenario: true},
		{format: "Before placing the trade, answer: %s"},
	},
	"ar": {
		{format: "%s"},
		{format: "اختبار معرفة: %s"},
		{format: "فحص المخاطرة أولاً: %s"},
		{format: "اختبار التنفيذ: %s"},
		{format: "مراجعة العملية: %s"},
		{format: "تركيز على السيناريو: %[2]s %[1]s", withScenario: true},
		{format: "قبل تنفيذ الصفقة أجب: %s"},
	},
}

// stylesFor picks the prompt scaffolding for the profile's language. Arabic
// is the default curriculum language.
func stylesFor(lang string) []promptStyle {
	if styles, ok := promptStyles[lang]; ok {
		return styles
	}
	return promptStyles["ar"]
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildQuizVariant assembles a short non-repeating quiz variant for a lesson.
// Served variant signatures are recorded on the profile so a repeat attempt
// sees different phrasings and option orders; the history clears itself once
// exhausted.
func BuildQuizVariant(lesson *domain.Lesson, profile *domain.Profile, rng *rand.Rand) []domain.QuizQuestion {
	if lesson == nil || len(lesson.Quiz) == 0 {
		return nil
	}

	styles := stylesFor(profile.Language)

	target := minVariantQuestions
	if span := maxVariantQuestions - minVariantQuestions; span > 0 {
		target += intn(rng, span+1)
	}
	if target > len(lesson.Quiz)*len(styles) {
		target = len(lesson.Quiz)
	}

	generated := make([]domain.QuizQuestion, 0, target)
	signatures := make([]string, 0, target)
	seen := make(map[string]bool)
	usedBase := make(map[string]bool)

	attempts := 0
	for len(generated) < target && attempts < maxVariantAttempts {
		attempts++

		base := lesson.Quiz[intn(rng, len(lesson.Quiz))]
		baseKey := normalizePrompt(base.Prompt)
		if len(usedBase) < len(lesson.Quiz) && usedBase[baseKey] {
			continue
		}

		variant, signature := buildVariant(base, lesson, styles, rng)
		if seen[signature] || profile.HasVariant(lesson.ID, signature) {
			continue
		}

		generated = append(generated, variant)
		signatures = append(signatures, signature)
		seen[signature] = true
		usedBase[baseKey] = true
	}

	// History exhausted: wipe it and accept repeats rather than serve nothing.
	if len(generated) < target {
		profile.ClearVariants(lesson.ID)
		for len(generated) < target && attempts < maxVariantAttempts*2 {
			attempts++
			base := lesson.Quiz[intn(rng, len(lesson.Quiz))]
			variant, signature := buildVariant(base, lesson, styles, rng)
			if seen[signature] {
				continue
			}
			generated = append(generated, variant)
			signatures = append(signatures, signature)
			seen[signature] = true
		}
	}

	if len(generated) == 0 {
		for _, q := range lesson.Quiz {
			shuffled, _ := shuffleOptions(q, rng)
			generated = append(generated, shuffled)
		}
	}

	if len(generated) > target {
		generated = generated[:target]
		signatures = signatures[:target]
	}
	profile.RecordVariants(lesson.ID, signatures)

	return generated
}

func buildVariant(base domain.QuizQuestion, lesson *domain.Lesson, styles []promptStyle, rng *rand.Rand) (domain.QuizQuestion, string) {
	styleIndex := intn(rng, len(styles))
	style := styles[styleIndex]

	prompt := fmt.Sprintf(style.format, base.Prompt)
	if style.withScenario {
		prompt = fmt.Sprintf(style.format, base.Prompt, compactScenario(lesson.Example))
	}

	shuffled, order := shuffleOptions(base, rng)
	shuffled.Prompt = prompt

	signature := fmt.Sprintf("%s|%s|s%d|o%s", lesson.ID, normalizePrompt(base.Prompt), styleIndex, order)
	return shuffled, signature
}

// shuffleOptions remaps option texts onto A-D in a random order and retargets
// the answer key. The returned order string identifies the permutation.
func shuffleOptions(q domain.QuizQuestion, rng *rand.Rand) (domain.QuizQuestion, string) {
	texts := make([]string, 0, len(domain.OptionKeys))
	for _, key := range domain.OptionKeys {
		if text, ok := q.Options[key]; ok {
			texts = append(texts, text)
		}
	}

	indices := make([]int, len(texts))
	for i := range indices {
		indices[i] = i
	}
	if rng == nil {
		rand.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	} else {
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	}

	correct := q.Options[strings.ToUpper(q.Answer)]
	remapped := make(map[string]string, len(texts))
	answer := "A"
	orderParts := make([]string, 0, len(indices))

	for i, idx := range indices {
		if i >= len(domain.OptionKeys) {
			break
		}
		key := domain.OptionKeys[i]
		remapped[key] = texts[idx]
		if texts[idx] == correct {
			answer = key
		}
		orderParts = append(orderParts, fmt.Sprintf("%d", idx))
	}

	shuffled := domain.QuizQuestion{
		Prompt:      q.Prompt,
		Options:     remapped,
		Answer:      answer,
		Explanation: q.Explanation,
	}
	return shuffled, strings.Join(orderParts, ",")
}

// compactScenario shortens a lesson example for inline use. Truncation
// counts runes so multibyte text never gets cut mid-character.
func compactScenario(example string) string {
	clean := strings.TrimSpace(example)
	runes := []rune(clean)
	if len(runes) <= 120 {
		return clean
	}
	return strings.TrimSpace(string(runes[:117])) + "..."
}

func normalizePrompt(text string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}
