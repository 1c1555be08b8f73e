// Package engine creates and verifies reasoning challenges. All challenge
// state is signed into the token itself, so an Engine is a pure function of
// its inputs plus the secret and is safe for unlimited concurrent use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uvensys/agentgate"
	"github.com/uvensys/agentgate/internal"
	"github.com/uvensys/agentgate/lib/generator"
	"github.com/uvensys/agentgate/lib/token"
)

var (
	challengesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentgate_challenges_issued",
		Help: "The total number of challenges issued",
	}, []string{"type"})

	challengesValidated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentgate_challenges_validated",
		Help: "The total number of challenges solved correctly",
	}, []string{"type"})

	failedValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentgate_failed_validations",
		Help: "The total number of failed challenge validations",
	}, []string{"type"})
)

var (
	// ErrBadSecret is a construction-time error: the signing secret is too
	// short to be worth anything.
	ErrBadSecret = errors.New("engine: secret must be at least 8 characters")

	// ErrUnknownType means create was asked for a challenge type that is not
	// in the generator registry.
	ErrUnknownType = errors.New("engine: unknown challenge type")

	// ErrEmptyTypePool means difficulty/allow-list resolution left nothing
	// to pick from. A misconfiguration, not a runtime outcome.
	ErrEmptyTypePool = errors.New("engine: resolved challenge type pool is empty")
)

// DynamicFunc asks an external collaborator (an LLM provider) for a novel
// (prompt, answer) pair. Any error makes the engine fall back to static
// generation.
type DynamicFunc func(ctx context.Context) (prompt, answer string, err error)

type Options struct {
	// Secret signs every token. Minimum agentgate.MinSecretLen characters.
	Secret string

	// Difficulty names the generator tier used when Types is empty.
	// Defaults to agentgate.DefaultDifficulty.
	Difficulty string

	// TTL is how long a challenge stays solvable. Defaults to
	// agentgate.DefaultTTL.
	TTL time.Duration

	// Types, when set, restricts generation to these registered type names.
	Types []string

	// Dynamic, when set, is tried before static generation for unspecified
	// create calls.
	Dynamic DynamicFunc
}

type Engine struct {
	codec      *token.Codec
	difficulty string
	ttl        time.Duration
	types      []string
	dynamic    DynamicFunc
}

func New(opts Options) (*Engine, error) {
	if len(opts.Secret) < agentgate.MinSecretLen {
		return nil, ErrBadSecret
	}

	if opts.Difficulty == "" {
		opts.Difficulty = agentgate.DefaultDifficulty
	}

	if opts.TTL <= 0 {
		opts.TTL = agentgate.DefaultTTL
	}

	return &Engine{
		codec:      token.NewCodec([]byte(opts.Secret)),
		difficulty: opts.Difficulty,
		ttl:        opts.TTL,
		types:      opts.Types,
		dynamic:    opts.Dynamic,
	}, nil
}

// payload is what actually lives inside a challenge token. The answer only
// ever appears as a one-way digest.
type payload struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	AnswerHash string `json:"answer_hash"`
	CreatedAt  int64  `json:"created_at"`
	ExpiresAt  int64  `json:"expires_at"`
}

// Create mints a new challenge. Pass "" to draw a random type from the
// configured pool.
func (e *Engine) Create(specificType string) (*Challenge, error) {
	ctype, prompt, answer, err := e.generate(specificType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	chal := payload{
		ID:         agentgate.ChallengeIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Type:       ctype,
		AnswerHash: internal.SHA256sum(answer),
		CreatedAt:  now.Unix(),
		ExpiresAt:  now.Add(e.ttl).Unix(),
	}

	tok, err := e.codec.Encode(chal)
	if err != nil {
		return nil, fmt.Errorf("engine: can't sign challenge: %w", err)
	}

	challengesIssued.WithLabelValues(ctype).Inc()

	return &Challenge{
		ID:            chal.ID,
		Prompt:        prompt,
		Token:         tok,
		ExpiresAt:     now.Add(e.ttl),
		ChallengeType: ctype,
	}, nil
}

func (e *Engine) generate(specificType string) (ctype, prompt, answer string, err error) {
	rng := generator.NewRand()

	if specificType != "" {
		impl, ok := generator.Get(specificType)
		if !ok {
			return "", "", "", fmt.Errorf("%w: %q (have %v)", ErrUnknownType, specificType, generator.Methods())
		}
		prompt, answer = impl.Generate(rng)
		return specificType, prompt, answer, nil
	}

	if e.dynamic != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		prompt, answer, err := e.dynamic(ctx)
		if err == nil && prompt != "" && Normalize(answer) != "" {
			return "dynamic", prompt, Normalize(answer), nil
		}
		slog.Debug("dynamic generation failed, falling back to static", "err", err)
	}

	pool := generator.Pool(e.difficulty, e.types)
	if len(pool) == 0 {
		return "", "", "", ErrEmptyTypePool
	}

	name := pool[rng.Intn(len(pool))]
	impl, _ := generator.Get(name)
	prompt, answer = impl.Generate(rng)
	return name, prompt, answer, nil
}

// Verify checks an agent's answer against a challenge token. Business
// outcomes come back as a VerifyResult, never an error.
func (e *Engine) Verify(tok, answer string) VerifyResult {
	start := time.Now()

	var chal payload
	if err := e.codec.Decode(tok, &chal); err != nil {
		slog.Debug("challenge token rejected", "token_hash", internal.FastHash(tok), "err", err)
		failedValidations.WithLabelValues("unknown").Inc()
		return VerifyResult{Valid: false, Error: err.Error()}
	}

	// A correctly signed payload without an answer digest is some other kind
	// of token (a persistent access token, say), never a challenge.
	if chal.AnswerHash == "" {
		failedValidations.WithLabelValues("unknown").Inc()
		return VerifyResult{Valid: false, Error: "Invalid challenge token"}
	}

	// Expiry wins over correctness: an expired-but-correct answer still
	// reports expiry.
	if time.Now().Unix() > chal.ExpiresAt {
		failedValidations.WithLabelValues(chal.Type).Inc()
		return VerifyResult{Valid: false, Error: "Challenge expired"}
	}

	normalized := Normalize(answer)
	if normalized == "" {
		failedValidations.WithLabelValues(chal.Type).Inc()
		return VerifyResult{Valid: false, Error: "Empty answer"}
	}

	if internal.SHA256sum(normalized) == chal.AnswerHash {
		challengesValidated.WithLabelValues(chal.Type).Inc()
		return VerifyResult{
			Valid:         true,
			ChallengeType: chal.Type,
			ElapsedMs:     time.Since(start).Milliseconds(),
		}
	}

	failedValidations.WithLabelValues(chal.Type).Inc()
	return VerifyResult{
		Valid:         false,
		Error:         "Incorrect answer",
		ChallengeType: chal.Type,
	}
}
