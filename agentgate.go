// Package agentgate holds the shared constants for agentgate, a stateless
// challenge gate that tells reasoning-capable AI agents apart from scripted
// clients. All trust decisions live inside HMAC-signed tokens, so there is
// nothing to store server-side.
package agentgate

import "time"

var Version = "devel"

const (
	// MinSecretLen is the minimum length of the shared signing secret.
	// Anything shorter is a configuration error, not a runtime outcome.
	MinSecretLen = 8

	// DefaultDifficulty is the tier used when no difficulty is configured.
	DefaultDifficulty = "easy"

	// DefaultTTL is how long an issued challenge stays solvable.
	DefaultTTL = 5 * time.Minute

	// PlaceholderType is what every challenge reports as its type over the
	// wire. The real generator name only ever travels inside the signed
	// token so scripted clients can't key a solver off it.
	PlaceholderType = "reasoning"

	// ChallengeIDPrefix prefixes every challenge id.
	ChallengeIDPrefix = "ch_"

	// PersistentTokenMarker is the version marker inside persistent token
	// payloads. It keeps long-lived access tokens from ever being accepted
	// where a challenge token is expected, and vice versa.
	PersistentTokenMarker = "pt1"

	// APIPrefix is where the gate endpoint is mounted.
	APIPrefix = "/api/"
)
