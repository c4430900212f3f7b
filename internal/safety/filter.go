// Package safety screens free-form user text for requests the assistant must
// refuse, such as guaranteed-profit systems.
package safety

import (
	"regexp"
	"strings"
)

// unrealisticPatterns match requests for guaranteed outcomes in English and
// Arabic. Matching is done on lowercased text.
var unrealisticPatterns = []*regexp.Regexp{
	regexp.MustCompile(`100\s*%\s*win`),
	regexp.MustCompile(`win\s*every\s*trade`),
	regexp.MustCompile(`guaranteed\s*(profit|strategy|signal)`),
	regexp.MustCompile(`no\s*loss`),
	regexp.MustCompile(`make\s*me\s*rich\s*(today|fast)`),
	regexp.MustCompile(`sure\s*signal`),
	regexp.MustCompile(`guarantee\s*profits`),
	regexp.MustCompile(`ربح\s*مضمون`),
	regexp.MustCompile(`بدون\s*خسارة`),
	regexp.MustCompile(`اربحني\s*(اليوم|بسرعة)`),
}

// IsUnrealisticRequest reports whether the text asks for guaranteed outcomes.
func IsUnrealisticRequest(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, pattern := range unrealisticPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// frustrationWords flag messages from users who just took a loss so the bot
// can answer with recovery guidance instead of new content.
var frustrationWords = []string{
	"frustrated", "lost money", "blew", "angry", "revenge trade",
	"متضايق", "خسرت", "معصب",
}

// IsFrustrated reports whether the text signals tilt after losses.
func IsFrustrated(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range frustrationWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
