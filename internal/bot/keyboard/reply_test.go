package keyboard_test

import (
	"testing"

	"github.com/sintrade/edubot/internal/bot/keyboard"
)

type mockTranslator struct {
	translations map[string]string
}

func (m *mockTranslator) T(key string) string {
	if value, ok := m.translations[key]; ok {
		return value
	}
	return key
}

func (m *mockTranslator) Lang() string {
	return "en"
}

func TestMainMenu(t *testing.T) {
	translator := &mockTranslator{
		translations: map[string]string{
			"btn.lesson":    "Lesson",
			"btn.simulate":  "Simulate",
			"btn.challenge": "Challenge",
			"btn.profile":   "Profile",
			"btn.askme":     "Ask me",
			"btn.help":      "Help",
		},
	}

	markup := keyboard.MainMenu(translator)

	if !markup.ResizeKeyboard {
		t.Fatalf("expected ResizeKeyboard to be true")
	}

	expectedRows := [][]string{
		{"Lesson", "Simulate"},
		{"Challenge", "Profile"},
		{"Ask me", "Help"},
	}

	if len(markup.ReplyKeyboard) != len(expectedRows) {
		t.Fatalf("expected %d rows, got %d", len(expectedRows), len(markup.ReplyKeyboard))
	}

	for i, row := range expectedRows {
		if len(markup.ReplyKeyboard[i]) != len(row) {
			t.Fatalf("row %d: expected %d buttons, got %d", i, len(row), len(markup.ReplyKeyboard[i]))
		}
		for j, text := range row {
			if markup.ReplyKeyboard[i][j].Text != text {
				t.Errorf("row %d button %d: expected %q, got %q", i, j, text, markup.ReplyKeyboard[i][j].Text)
			}
		}
	}
}
