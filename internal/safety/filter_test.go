package safety

import "testing"

func TestIsUnrealisticRequest(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected bool
	}{
		{name: "percent win", text: "give me a 100% win strategy", expected: true},
		{name: "win every trade", text: "I want to WIN EVERY TRADE", expected: true},
		{name: "guaranteed profit", text: "any guaranteed profit setups?", expected: true},
		{name: "no loss", text: "teach me a no loss method", expected: true},
		{name: "rich fast", text: "make me rich fast please", expected: true},
		{name: "sure signal", text: "send a sure   signal", expected: true},
		{name: "arabic guaranteed", text: "أريد ربح مضمون", expected: true},
		{name: "arabic no loss", text: "استراتيجية بدون خسارة", expected: true},
		{name: "normal question", text: "how do I size a position?", expected: false},
		{name: "mentions risk", text: "what is a reasonable win rate?", expected: false},
		{name: "empty", text: "", expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsUnrealisticRequest(tc.text); actual != tc.expected {
				t.Errorf("IsUnrealisticRequest(%q) = %t, expected %t", tc.text, actual, tc.expected)
			}
		})
	}
}

func TestIsFrustrated(t *testing.T) {
	if !IsFrustrated("I lost money again and I am angry") {
		t.Error("expected frustration to be detected")
	}
	if !IsFrustrated("خسرت كثيرا هذا الأسبوع") {
		t.Error("expected arabic frustration to be detected")
	}
	if IsFrustrated("how do trailing stops work?") {
		t.Error("did not expect frustration for a neutral question")
	}
}
