package handlers

import (
	"fmt"
	"strings"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/i18n"
)

func renderLesson(t i18n.Translator, lesson *domain.Lesson, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, t.T("lesson.header"), index+1, total, lesson.Title)
	b.WriteString("\n\n")

	if lesson.Objective != "" {
		b.WriteString(lesson.Objective)
		b.WriteString("\n\n")
	}

	for _, point := range lesson.BulletPoints {
		b.WriteString("• ")
		b.WriteString(point)
		b.WriteString("\n")
	}

	if lesson.Example != "" {
		b.WriteString("\n")
		b.WriteString(lesson.Example)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderQuestion(t i18n.Translator, q *domain.QuizQuestion, number, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, t.T("quiz.question"), number, total, q.Prompt)
	b.WriteString("\n")

	for _, key := range domain.OptionKeys {
		if option, ok := q.Options[key]; ok {
			fmt.Fprintf(&b, "\n%s) %s", key, option)
		}
	}

	return b.String()
}

func renderScenario(scenario *domain.SimulationScenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nEntry: %.2f | Support: %.2f | Resistance: %.2f",
		scenario.Symbol, scenario.Entry, scenario.Support, scenario.Resistance)
	if scenario.Context != "" {
		b.WriteString("\n")
		b.WriteString(scenario.Context)
	}
	return b.String()
}

func levelLabel(t i18n.Translator, level domain.Level) string {
	switch level {
	case domain.LevelBeginner:
		return t.T("level.beginner")
	case domain.LevelIntermediate:
		return t.T("level.intermediate")
	case domain.LevelAdvanced:
		return t.T("level.advanced_name")
	case domain.LevelProfessional:
		return t.T("level.professional")
	}
	return string(level)
}

func accessLabel(t i18n.Translator, access domain.Access) string {
	if access == domain.AccessPremium {
		return t.T("profile.access_premium")
	}
	return t.T("profile.access_free")
}

func formatRatio(ratio float64) string {
	return fmt.Sprintf("1:%.1f", ratio)
}
