package generator

import (
	"math/rand"
	"testing"
)

type fixedImpl struct{}

func (fixedImpl) Generate(rng *rand.Rand) (string, string) {
	return "What is 1 + 1? Reply with only the answer.", "2"
}

func TestRegistry(t *testing.T) {
	Register("test_fixed", fixedImpl{})

	impl, ok := Get("test_fixed")
	if !ok {
		t.Fatal("registered type not found")
	}

	if _, answer := impl.Generate(NewRand()); answer != "2" {
		t.Errorf("answer = %q, want 2", answer)
	}

	if _, ok := Get("does_not_exist"); ok {
		t.Error("Get returned an unregistered type")
	}

	found := false
	for _, name := range Methods() {
		if name == "test_fixed" {
			found = true
		}
	}
	if !found {
		t.Error("Methods() does not list registered type")
	}
}

func TestPoolAllowListWins(t *testing.T) {
	Register("test_pool_a", fixedImpl{})
	Register("test_pool_b", fixedImpl{})

	pool := Pool("easy", []string{"test_pool_a", "test_pool_b", "not_registered"})
	if len(pool) != 2 {
		t.Fatalf("pool = %v, want the two registered names", pool)
	}
}

func TestPoolUnknownDifficultyFallsBack(t *testing.T) {
	easy := Pool("easy", nil)
	weird := Pool("ultraviolence", nil)

	if len(weird) != len(easy) {
		t.Errorf("unknown difficulty pool = %v, want easy tier %v", weird, easy)
	}
}

func TestBuildPromptVariety(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[BuildPrompt(rng, "Reverse the string HELLO.")] = true
	}

	// The same task wrapped 200 times must not collapse to a small fixed
	// set of literal strings.
	if len(seen) < 30 {
		t.Errorf("only %d distinct prompts out of 200, template variety too low", len(seen))
	}
}

func TestReplyInstVariety(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[ReplyInst(rng)] = true
	}
	if len(seen) < 10 {
		t.Errorf("only %d distinct reply instructions out of 100", len(seen))
	}
}

func TestNewRandIndependent(t *testing.T) {
	a, b := NewRand(), NewRand()

	same := true
	for i := 0; i < 8; i++ {
		if a.Int63() != b.Int63() {
			same = false
			break
		}
	}
	if same {
		t.Error("two fresh rngs produced identical streams")
	}
}
