// Package generator defines the puzzle generator contract and the registry of
// generator implementations. A generator produces a (prompt, answer) pair; the
// answer must already be in the canonical normalized form the challenge engine
// compares against (lowercase, single-spaced, comma lists joined with ", ").
package generator

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/uvensys/agentgate"
)

var (
	registry map[string]Impl = map[string]Impl{}
	regLock  sync.RWMutex
)

// Impl is a single puzzle kind. Implementations are stateless; all randomness
// comes from the rng handed to Generate, so concurrent calls are independent
// and tests can seed deterministically.
type Impl interface {
	// Generate returns a self-contained prompt (including a "reply with only
	// the answer" instruction) and the canonical answer.
	Generate(rng *rand.Rand) (prompt string, answer string)
}

func Register(name string, impl Impl) {
	regLock.Lock()
	defer regLock.Unlock()

	registry[name] = impl
}

func Get(name string) (Impl, bool) {
	regLock.RLock()
	defer regLock.RUnlock()
	result, ok := registry[name]
	return result, ok
}

func Methods() []string {
	regLock.RLock()
	defer regLock.RUnlock()
	var result []string
	for method := range registry {
		result = append(result, method)
	}
	sort.Strings(result)
	return result
}

// Tiers are named pools of generator names. Type selection draws uniformly
// from the resolved pool.
var Tiers = map[string][]string{
	"easy": {"reverse_string", "simple_math", "pattern", "string_length"},
	"medium": {
		"reverse_string", "simple_math", "pattern", "string_length",
		"rot13", "letter_position", "extract_letters", "counting", "first_last",
	},
	"hard": {
		"reverse_string", "simple_math", "pattern", "string_length",
		"rot13", "letter_position", "extract_letters", "counting", "first_last",
		"caesar", "word_math", "sorting", "transform", "binary",
	},
}

// Pool resolves the candidate type names for one create call. An explicit
// allow list wins over the difficulty tier; either way unregistered names are
// dropped rather than failed, matching how an operator would expect a stale
// config entry to behave.
func Pool(difficulty string, allowed []string) []string {
	var candidates []string
	if len(allowed) > 0 {
		candidates = allowed
	} else {
		tier, ok := Tiers[difficulty]
		if !ok {
			tier = Tiers[agentgate.DefaultDifficulty]
		}
		candidates = tier
	}

	var pool []string
	for _, name := range candidates {
		if _, ok := Get(name); ok && !slices.Contains(pool, name) {
			pool = append(pool, name)
		}
	}
	return pool
}

// SelfCheck asserts the registry integrity invariants once, at build/test
// time: every tier member is registered, every registered type belongs to at
// least one tier, and for samples draws per type the generator emits a
// non-empty prompt and an answer that is a fixed point of normalize. The last
// check is what lets the engine hash raw generator answers and still match
// normalized submissions.
func SelfCheck(samples int, normalize func(string) string) error {
	for tier, names := range Tiers {
		for _, name := range names {
			if _, ok := Get(name); !ok {
				return fmt.Errorf("generator: tier %q lists unregistered type %q", tier, name)
			}
		}
	}

	for _, name := range Methods() {
		inTier := false
		for _, names := range Tiers {
			if slices.Contains(names, name) {
				inTier = true
				break
			}
		}
		if !inTier {
			return fmt.Errorf("generator: type %q belongs to no tier", name)
		}
	}

	rng := NewRand()
	for _, name := range Methods() {
		impl, _ := Get(name)
		for i := 0; i < samples; i++ {
			prompt, answer := impl.Generate(rng)
			if prompt == "" {
				return fmt.Errorf("generator: %s emitted an empty prompt", name)
			}
			if answer == "" {
				return fmt.Errorf("generator: %s emitted an empty answer", name)
			}
			if normalize != nil && normalize(answer) != answer {
				return fmt.Errorf("generator: %s emitted non-canonical answer %q", name, answer)
			}
		}
	}

	return nil
}

// NewRand returns a fresh rng seeded from the OS entropy source. Generators
// must never share an unprotected rng across goroutines; callers get one of
// these per create call.
func NewRand() *rand.Rand {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}
