package content

import (
	"hash/fnv"
	"time"

	"github.com/sintrade/edubot/internal/domain"
)

// ChallengeOfDay returns the deterministic challenge for the given day. Every
// instance of the bot resolves the same challenge for the same date.
func (c *Catalog) ChallengeOfDay(t time.Time) domain.Challenge {
	challenges := c.Challenges()
	if len(challenges) == 0 {
		return domain.Challenge{}
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(t.UTC().Format("2006-01-02")))
	return challenges[int(h.Sum32())%len(challenges)]
}
