package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChallengeOfDayDeterministic(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	first := catalog.ChallengeOfDay(day)
	second := catalog.ChallengeOfDay(day)
	require.Equal(t, first, second)

	// Same calendar day in another timezone resolves to the same pick.
	tokyo := time.FixedZone("JST", 9*3600)
	sameDay := time.Date(2026, 3, 14, 18, 0, 0, 0, tokyo)
	require.Equal(t, first, catalog.ChallengeOfDay(sameDay))
}

func TestChallengeOfDayRotates(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]bool)
	for i := 0; i < 30; i++ {
		challenge := catalog.ChallengeOfDay(start.AddDate(0, 0, i))
		require.NotEmpty(t, challenge.Prompt)
		seen[challenge.Prompt] = true
	}

	require.Greater(t, len(seen), 1, "a month of challenges should not repeat a single prompt")
}
