package engine

import (
	"time"

	"github.com/uvensys/agentgate"
)

// Challenge is one issued puzzle. It is immutable; it is "destroyed" only by
// its token expiring, because there is no server-side record to delete.
type Challenge struct {
	ID            string
	Prompt        string
	Token         string
	ExpiresAt     time.Time
	ChallengeType string
}

func (c *Challenge) Expired() bool {
	return time.Now().After(c.ExpiresAt)
}

// ToDict is the public wire form. The real challenge type stays inside the
// signed token; callers only ever see the placeholder.
func (c *Challenge) ToDict() map[string]any {
	expiresIn := int(time.Until(c.ExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return map[string]any{
		"id":         c.ID,
		"prompt":     c.Prompt,
		"token":      c.Token,
		"expires_in": expiresIn,
		"type":       agentgate.PlaceholderType,
	}
}

// VerifyResult is the outcome of checking one answer. ChallengeType is
// reported on both the success and wrong-answer paths for caller-side
// telemetry, even though the public Challenge serialization hides it.
type VerifyResult struct {
	Valid         bool
	Error         string
	ChallengeType string
	ElapsedMs     int64
}
