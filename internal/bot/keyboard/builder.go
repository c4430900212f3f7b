package keyboard

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/i18n"
)

// Builder creates the inline keyboards used across the learning flows.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// MainMenu builds the inline main menu.
func (b *Builder) MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: translated(t, "btn.lesson", "📚 Lesson"), Unique: "menu", Data: "lesson"},
			InlineButton{Text: translated(t, "btn.simulate", "📊 Simulate"), Unique: "menu", Data: "simulate"},
		).
		AddRow(
			InlineButton{Text: translated(t, "btn.challenge", "🎯 Challenge"), Unique: "menu", Data: "challenge"},
			InlineButton{Text: translated(t, "btn.profile", "👤 Profile"), Unique: "menu", Data: "profile"},
		).
		AddRow(
			InlineButton{Text: translated(t, "btn.askme", "💬 Ask me"), Unique: "menu", Data: "askme"},
			InlineButton{Text: translated(t, "btn.language", "🌐 Language"), Unique: "menu", Data: "language"},
		).
		Build()
	return b.must(markup, err)
}

// LevelMenu builds level selection buttons.
func (b *Builder) LevelMenu(t i18n.Translator) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	labels := map[domain.Level]string{
		domain.LevelBeginner:     translated(t, "level.beginner", "Beginner"),
		domain.LevelIntermediate: translated(t, "level.intermediate", "Intermediate"),
		domain.LevelAdvanced:     translated(t, "level.advanced_name", "Advanced"),
		domain.LevelProfessional: translated(t, "level.professional", "Professional"),
	}

	for _, level := range domain.LevelOrder {
		kb.AddRow(InlineButton{Text: labels[level], Unique: "set", Data: "level:" + string(level)})
	}

	markup, err := kb.Build()
	return b.must(markup, err)
}

// FocusMenu builds market focus selection buttons.
func (b *Builder) FocusMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "Spot", Unique: "set", Data: "focus:spot"},
			InlineButton{Text: "Futures", Unique: "set", Data: "focus:futures"},
			InlineButton{Text: "Spot + Futures", Unique: "set", Data: "focus:both"},
		).
		Build()
	return b.must(markup, err)
}

// LanguageMenu builds language selection buttons.
func (b *Builder) LanguageMenu() *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "العربية 🇩🇿", Unique: "set", Data: "lang:ar"},
			InlineButton{Text: "English 🇬🇧", Unique: "set", Data: "lang:en"},
		).
		Build()
	return b.must(markup, err)
}

// LessonActions builds the action row shown under a lesson. Before completion
// the learner confirms they finished reading; after that the quiz unlocks.
func (b *Builder) LessonActions(t i18n.Translator, lessonIndex int, completed bool) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	if completed {
		kb.AddRow(InlineButton{
			Text:   translated(t, "btn.start_quiz", "📝 Start quiz"),
			Unique: "quiz",
			Data:   "start",
		})
	} else {
		kb.AddRow(InlineButton{
			Text:   translated(t, "btn.complete", "✅ Mark lesson done"),
			Unique: "lesson",
			Data:   fmt.Sprintf("complete:%d", lessonIndex),
		})
	}

	markup, err := kb.Build()
	return b.must(markup, err)
}

// QuizOptions builds one button per answer option, in A-D order.
func (b *Builder) QuizOptions(question domain.QuizQuestion) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, key := range domain.OptionKeys {
		text, ok := question.Options[key]
		if !ok {
			continue
		}
		kb.AddRow(InlineButton{Text: key + ") " + text, Unique: "ans", Data: key})
	}

	markup, err := kb.Build()
	return b.must(markup, err)
}

// NextLesson builds the button that opens the next lesson after a quiz.
func (b *Builder) NextLesson(t i18n.Translator) *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(InlineButton{Text: translated(t, "btn.next_lesson", "➡️ Next lesson"), Unique: "menu", Data: "lesson"}).
		Build()
	return b.must(markup, err)
}

// LevelUp builds the button that advances to the next curriculum level.
func (b *Builder) LevelUp(t i18n.Translator) *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(InlineButton{Text: translated(t, "btn.next_level", "⬆️ Next level"), Unique: "level", Data: "up"}).
		Build()
	return b.must(markup, err)
}

// DirectionButtons builds the long/short choice for simulations.
func (b *Builder) DirectionButtons() *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "Long 📈", Unique: "simdir", Data: "long"},
			InlineButton{Text: "Short 📉", Unique: "simdir", Data: "short"},
		).
		Build()
	return b.must(markup, err)
}

// must logs encoding failures and degrades to no keyboard. Button payloads are
// all small constants, so a failure here is a programming error.
func (b *Builder) must(markup *telebot.ReplyMarkup, err error) *telebot.ReplyMarkup {
	if err != nil {
		if b.log != nil {
			b.log.Error("failed to build keyboard", slog.Any("error", err))
		}
		return nil
	}
	return markup
}
