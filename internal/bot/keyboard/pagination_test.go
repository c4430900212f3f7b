package keyboard_test

import (
	"testing"

	"github.com/sintrade/edubot/internal/bot/keyboard"
)

func TestPaginationButtons(t *testing.T) {
	translator := &mockTranslator{
		translations: map[string]string{
			"pagination.pagination_prev": "◀️ Prev",
			"pagination.pagination_next": "Next ▶️",
			"pagination.pagination_page": "Page {{.Page}}/{{.Total}}",
		},
	}

	testCases := []struct {
		name      string
		page      int
		total     int
		wantTexts []string
		wantData  []string
	}{
		{
			name:      "first page",
			page:      1,
			total:     5,
			wantTexts: []string{"Page 1/5", "Next ▶️"},
			wantData:  []string{"1", "2"},
		},
		{
			name:      "middle page",
			page:      3,
			total:     5,
			wantTexts: []string{"◀️ Prev", "Page 3/5", "Next ▶️"},
			wantData:  []string{"2", "3", "4"},
		},
		{
			name:      "last page",
			page:      5,
			total:     5,
			wantTexts: []string{"◀️ Prev", "Page 5/5"},
			wantData:  []string{"4", "5"},
		},
		{
			name:      "single page",
			page:      1,
			total:     1,
			wantTexts: []string{"Page 1/1"},
			wantData:  []string{"1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buttons := keyboard.PaginationButtons(translator, "lessons", tc.page, tc.total)
			if len(buttons) != len(tc.wantTexts) {
				t.Fatalf("expected %d buttons, got %d", len(tc.wantTexts), len(buttons))
			}

			for i := range tc.wantTexts {
				if buttons[i].Text != tc.wantTexts[i] {
					t.Errorf("button %d: expected text %q, got %q", i, tc.wantTexts[i], buttons[i].Text)
				}
				if buttons[i].Unique != "lessons" {
					t.Errorf("button %d: expected unique %q, got %q", i, "lessons", buttons[i].Unique)
				}
				if buttons[i].Data != tc.wantData[i] {
					t.Errorf("button %d: expected data %q, got %q", i, tc.wantData[i], buttons[i].Data)
				}
			}
		})
	}
}
