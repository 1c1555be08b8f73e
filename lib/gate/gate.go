// Package gate is the public protocol surface: one entry point that composes
// challenge issuance, answer verification and persistent-token handling into a
// single request/response contract. A Gate holds no per-request state; every
// call is reconstructible from its inputs and the shared secret.
package gate

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uvensys/agentgate"
	"github.com/uvensys/agentgate/internal"
	"github.com/uvensys/agentgate/lib/engine"
	"github.com/uvensys/agentgate/lib/token"
)

var gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agentgate_gate_decisions",
	Help: "Gate outcomes by status",
}, []string{"status"})

const (
	StatusChallengeRequired = "challenge_required"
	StatusAuthenticated     = "authenticated"
	StatusError             = "error"
)

type Options struct {
	// Secret signs challenge and persistent tokens alike.
	Secret string

	// Difficulty, TTL and Types configure the underlying challenge engine.
	Difficulty string
	TTL        time.Duration
	Types      []string

	// Persistent controls whether solving a challenge earns a long-lived
	// token. With it off ("lock mode") every request costs a fresh solve.
	Persistent bool

	// AgentID is an opaque label stamped into issued persistent tokens.
	// Empty means anonymous.
	AgentID string

	// Dynamic optionally sources challenges from an external LLM instead of
	// the static generator pool, falling back to static on failure.
	Dynamic engine.DynamicFunc
}

type Gate struct {
	engine     *engine.Engine
	codec      *token.Codec
	persistent bool
	agentID    string
}

func New(opts Options) (*Gate, error) {
	eng, err := engine.New(engine.Options{
		Secret:     opts.Secret,
		Difficulty: opts.Difficulty,
		TTL:        opts.TTL,
		Types:      opts.Types,
		Dynamic:    opts.Dynamic,
	})
	if err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}

	return &Gate{
		engine:     eng,
		codec:      token.NewCodec([]byte(opts.Secret)),
		persistent: opts.Persistent,
		agentID:    opts.AgentID,
	}, nil
}

// Result is the gate's answer to one request. Optional fields are omitted,
// not null, in the wire form; see ToDict.
type Result struct {
	Status         string
	Prompt         string
	ChallengeToken string
	ExpiresIn      int
	Token          string
	Instructions   string
	Error          string
}

// ToDict serializes for a JSON response, leaving out empty optionals.
func (r Result) ToDict() map[string]any {
	d := map[string]any{"status": r.Status}
	if r.Prompt != "" {
		d["prompt"] = r.Prompt
	}
	if r.ChallengeToken != "" {
		d["challenge_token"] = r.ChallengeToken
	}
	if r.ExpiresIn > 0 {
		d["expires_in"] = r.ExpiresIn
	}
	if r.Token != "" {
		d["token"] = r.Token
	}
	if r.Instructions != "" {
		d["instructions"] = r.Instructions
	}
	if r.Error != "" {
		d["error"] = r.Error
	}
	return d
}

// persistentPayload is what lives inside a long-lived access token. The
// marker plus the absence of expiry fields keeps it from ever being read as a
// challenge token.
type persistentPayload struct {
	V        string `json:"v"`
	AgentID  string `json:"agent_id"`
	IssuedAt int64  `json:"issued_at"`
}

// CreateToken mints a persistent token outside the solve flow, for operators
// that provision trusted agents directly.
func (g *Gate) CreateToken() (string, error) {
	if !g.persistent {
		return "", errors.New("gate: persistent tokens are disabled")
	}
	return g.mintToken()
}

func (g *Gate) mintToken() (string, error) {
	return g.codec.Encode(persistentPayload{
		V:        agentgate.PersistentTokenMarker,
		AgentID:  g.agentID,
		IssuedAt: time.Now().Unix(),
	})
}

// Gate runs the protocol state machine. Precedence: a persistent-token claim
// beats a challenge solve, which beats issuing a new challenge.
func (g *Gate) Gate(tok, challengeToken, answer string) Result {
	switch {
	case tok != "":
		return g.done(g.claimToken(tok))
	case challengeToken != "" && answer != "":
		return g.done(g.solve(challengeToken, answer))
	default:
		return g.done(g.issue())
	}
}

func (g *Gate) done(r Result) Result {
	gateDecisions.WithLabelValues(r.Status).Inc()
	return r
}

func (g *Gate) claimToken(tok string) Result {
	// Tier policy first: when the feature is off, even a structurally valid
	// token is refused.
	if !g.persistent {
		return Result{Status: StatusError, Error: "Persistent tokens are disabled, solve a challenge instead"}
	}

	var claims persistentPayload
	if err := g.codec.Decode(tok, &claims); err != nil {
		slog.Debug("persistent token rejected", "token_hash", internal.FastHash(tok), "err", err)
		return Result{Status: StatusError, Error: "Invalid token"}
	}

	if claims.V != agentgate.PersistentTokenMarker {
		slog.Debug("token payload is not a persistent token", "token_hash", internal.FastHash(tok))
		return Result{Status: StatusError, Error: "Invalid token"}
	}

	// Never re-issue on reuse; the caller already holds the credential.
	return Result{Status: StatusAuthenticated}
}

func (g *Gate) solve(challengeToken, answer string) Result {
	res := g.engine.Verify(challengeToken, answer)
	if !res.Valid {
		return Result{Status: StatusError, Error: res.Error}
	}

	out := Result{Status: StatusAuthenticated}
	if g.persistent {
		tok, err := g.mintToken()
		if err != nil {
			slog.Error("can't mint persistent token", "err", err)
			return Result{Status: StatusError, Error: "Token issuance failed"}
		}
		out.Token = tok
	}
	return out
}

func (g *Gate) issue() Result {
	chal, err := g.engine.Create("")
	if err != nil {
		// Pool/configuration problems surface at construction or test time;
		// reaching this at runtime means the operator broke the registry.
		slog.Error("can't create challenge", "err", err)
		return Result{Status: StatusError, Error: "Challenge creation failed"}
	}

	expiresIn := int(time.Until(chal.ExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	instructions := "Solve the challenge and resubmit with challenge_token and answer. Access is granted for that request only; you will solve a new challenge on every request."
	if g.persistent {
		instructions = "Solve the challenge and resubmit with challenge_token and answer. On success you will receive a token; save it and send it as 'Authorization: Bearer <token>' on future requests."
	}

	return Result{
		Status:         StatusChallengeRequired,
		Prompt:         chal.Prompt,
		ChallengeToken: chal.Token,
		ExpiresIn:      expiresIn,
		Instructions:   instructions,
	}
}
