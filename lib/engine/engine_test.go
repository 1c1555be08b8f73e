package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/uvensys/agentgate"
	"github.com/uvensys/agentgate/lib/generator"

	// challenge implementations
	_ "github.com/uvensys/agentgate/lib/generator/builtin"
)

const testSecret = "test-secret-key-12"

func mkEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Secret == "" {
		opts.Secret = testSecret
	}
	e, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSelfCheck(t *testing.T) {
	// Registry integrity plus the load-bearing cross-component contract:
	// every generator's answer must be a fixed point of Normalize, because
	// create hashes the raw answer and verify hashes the normalized
	// submission.
	if err := generator.SelfCheck(25, Normalize); err != nil {
		t.Fatal(err)
	}
}

func TestNewRejectsShortSecret(t *testing.T) {
	if _, err := New(Options{Secret: "short"}); !errors.Is(err, ErrBadSecret) {
		t.Errorf("got %v, want ErrBadSecret", err)
	}
}

func TestCreateUnknownType(t *testing.T) {
	e := mkEngine(t, Options{})
	if _, err := e.Create("no_such_type"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("got %v, want ErrUnknownType", err)
	}
}

func TestCreateEmptyPool(t *testing.T) {
	e := mkEngine(t, Options{Types: []string{"none_of", "these_exist"}})
	if _, err := e.Create(""); !errors.Is(err, ErrEmptyTypePool) {
		t.Errorf("got %v, want ErrEmptyTypePool", err)
	}
}

func TestRoundTripAllTypes(t *testing.T) {
	// For every registered type: 100 independent create/verify round trips
	// with the canonical answer all report valid. Create never exposes the
	// answer, so wrap each registered generator to capture it.
	e := mkEngine(t, Options{})

	for _, name := range generator.Methods() {
		orig, ok := generator.Get(name)
		if !ok {
			t.Fatalf("type %q vanished from registry", name)
		}

		capture := &capturingImpl{inner: orig}
		generator.Register(name, capture)

		for i := 0; i < 100; i++ {
			chal, err := e.Create(name)
			if err != nil {
				generator.Register(name, orig)
				t.Fatal(err)
			}

			res := e.Verify(chal.Token, capture.lastAnswer)
			if !res.Valid {
				generator.Register(name, orig)
				t.Fatalf("%s round trip %d: %+v (answer %q)", name, i, res, capture.lastAnswer)
			}
			if res.ChallengeType != name {
				generator.Register(name, orig)
				t.Fatalf("%s: ChallengeType = %q", name, res.ChallengeType)
			}
		}

		generator.Register(name, orig)
	}
}

type capturingImpl struct {
	inner      generator.Impl
	lastAnswer string
}

func (c *capturingImpl) Generate(rng *rand.Rand) (string, string) {
	prompt, answer := c.inner.Generate(rng)
	c.lastAnswer = answer
	return prompt, answer
}

type fixedMath struct{}

func (fixedMath) Generate(rng *rand.Rand) (string, string) {
	return "What is 7 + 13? Reply with ONLY the number, nothing else.", "20"
}

func TestEndToEndFixedMath(t *testing.T) {
	orig, _ := generator.Get("simple_math")
	generator.Register("simple_math", fixedMath{})
	defer generator.Register("simple_math", orig)

	e := mkEngine(t, Options{Secret: "test-secret-key-12"})

	chal, err := e.Create("simple_math")
	if err != nil {
		t.Fatal(err)
	}

	if res := e.Verify(chal.Token, "20"); !res.Valid {
		t.Errorf("correct answer rejected: %+v", res)
	}

	res := e.Verify(chal.Token, "21")
	if res.Valid {
		t.Error("wrong answer accepted")
	}
	if res.Error != "Incorrect answer" {
		t.Errorf("error = %q, want Incorrect answer", res.Error)
	}
	if res.ChallengeType != "simple_math" {
		t.Errorf("wrong-answer path should still report the type, got %q", res.ChallengeType)
	}
}

func TestDynamicGeneration(t *testing.T) {
	e := mkEngine(t, Options{Dynamic: func(ctx context.Context) (string, string, error) {
		return "Name the color of a clear daytime sky. Reply with ONLY the color.", "Blue", nil
	}})

	chal, err := e.Create("")
	if err != nil {
		t.Fatal(err)
	}
	if chal.ChallengeType != "dynamic" {
		t.Fatalf("type = %q, want dynamic", chal.ChallengeType)
	}
	if !strings.Contains(chal.Prompt, "daytime sky") {
		t.Errorf("prompt = %q, want the hook's prompt", chal.Prompt)
	}

	// The hook's answer is normalized before hashing, so case variants of
	// the submission still match.
	for _, answer := range []string{"blue", "BLUE", " Blue "} {
		res := e.Verify(chal.Token, answer)
		if !res.Valid {
			t.Errorf("Verify(%q) = %+v, want valid", answer, res)
		}
		if res.ChallengeType != "dynamic" {
			t.Errorf("Verify(%q) type = %q, want dynamic", answer, res.ChallengeType)
		}
	}
}

func TestDynamicFallsBackToStatic(t *testing.T) {
	// A failing or degenerate hook must never break challenge issuance;
	// create falls back to the static pool.
	hooks := map[string]DynamicFunc{
		"error": func(ctx context.Context) (string, string, error) {
			return "", "", errors.New("provider unreachable")
		},
		"empty prompt": func(ctx context.Context) (string, string, error) {
			return "", "42", nil
		},
		"blank answer": func(ctx context.Context) (string, string, error) {
			return "What is 1 + 1?", "  '' ", nil
		},
	}

	for name, hook := range hooks {
		t.Run(name, func(t *testing.T) {
			e := mkEngine(t, Options{Dynamic: hook})

			chal, err := e.Create("")
			if err != nil {
				t.Fatal(err)
			}
			if chal.ChallengeType == "dynamic" {
				t.Fatalf("degenerate hook output accepted: %+v", chal)
			}
			if _, ok := generator.Get(chal.ChallengeType); !ok {
				t.Errorf("fallback type %q is not a registered generator", chal.ChallengeType)
			}
		})
	}
}

func TestDynamicSkippedForSpecificType(t *testing.T) {
	called := false
	e := mkEngine(t, Options{Dynamic: func(ctx context.Context) (string, string, error) {
		called = true
		return "prompt", "answer", nil
	}})

	chal, err := e.Create("simple_math")
	if err != nil {
		t.Fatal(err)
	}
	if chal.ChallengeType != "simple_math" {
		t.Errorf("type = %q, want simple_math", chal.ChallengeType)
	}
	if called {
		t.Error("an explicit type request must not consult the dynamic hook")
	}
}

func TestVerifyEmptyAnswer(t *testing.T) {
	e := mkEngine(t, Options{})

	chal, err := e.Create("")
	if err != nil {
		t.Fatal(err)
	}

	for _, answer := range []string{"", "   ", "\t\n", `""`} {
		res := e.Verify(chal.Token, answer)
		if res.Valid || res.Error != "Empty answer" {
			t.Errorf("Verify(%q) = %+v, want Empty answer", answer, res)
		}
	}
}

func TestVerifyBadToken(t *testing.T) {
	e := mkEngine(t, Options{})

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		res := e.Verify(tok, "42")
		if res.Valid {
			t.Errorf("Verify(%q) accepted a bad token", tok)
		}
	}

	// Token from a different secret.
	other := mkEngine(t, Options{Secret: "another-secret-42"})
	chal, err := other.Create("")
	if err != nil {
		t.Fatal(err)
	}
	if res := e.Verify(chal.Token, "whatever"); res.Valid {
		t.Error("token signed with a different secret was accepted")
	}
}

func TestVerifyExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps for expiry")
	}

	orig, _ := generator.Get("simple_math")
	generator.Register("simple_math", fixedMath{})
	defer generator.Register("simple_math", orig)

	e := mkEngine(t, Options{TTL: time.Second})

	chal, err := e.Create("simple_math")
	if err != nil {
		t.Fatal(err)
	}

	if res := e.Verify(chal.Token, "20"); !res.Valid {
		t.Fatalf("fresh challenge rejected: %+v", res)
	}

	// Expiry is recorded in whole seconds, so sleep past two boundaries.
	time.Sleep(2100 * time.Millisecond)

	res := e.Verify(chal.Token, "20")
	if res.Valid {
		t.Fatal("expired challenge accepted")
	}
	if res.Error != "Challenge expired" {
		t.Errorf("expired-but-correct answer must report expiry, got %q", res.Error)
	}
}

func TestChallengeToDict(t *testing.T) {
	e := mkEngine(t, Options{})

	chal, err := e.Create("")
	if err != nil {
		t.Fatal(err)
	}

	d := chal.ToDict()
	if d["type"] != agentgate.PlaceholderType {
		t.Errorf("public type = %v, must always be the placeholder", d["type"])
	}
	if d["token"] != chal.Token {
		t.Error("token missing from public serialization")
	}
	if !strings.HasPrefix(d["id"].(string), agentgate.ChallengeIDPrefix) {
		t.Errorf("id = %v, want %s prefix", d["id"], agentgate.ChallengeIDPrefix)
	}
	if d["expires_in"].(int) <= 0 {
		t.Errorf("expires_in = %v, want > 0", d["expires_in"])
	}

	stale := &Challenge{ExpiresAt: time.Now().Add(-time.Minute)}
	if got := stale.ToDict()["expires_in"].(int); got != 0 {
		t.Errorf("expires_in for stale challenge = %d, want clamped to 0", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Hello World  ", "hello world"},
		{`"42"`, "42"},
		{"'quoted'", "quoted"},
		{"a   b\t c", "a b c"},
		{"answer...", "answer"},
		{"answer!", "answer"},
		{"1,2,3", "1, 2, 3"},
		{"1, 2, 3", "1, 2, 3"},
		{" 1 , 2,3 ", "1, 2, 3"},
		{"1, 2, 3.", "1, 2, 3"},
		{"12, 34 ,", "12, 34"},
		// Quote layers hiding behind trailing punctuation, and vice versa.
		{`"42".`, "42"},
		{"'a'.", "a"},
		{"'1, 2'.", "1, 2"},
		{`"'x'"`, "x"},
		{`'answer!'`, "answer"},
		{"a, b.,", "a, b"},
		{"", ""},
		{"   ", ""},
	}

	for _, cs := range cases {
		if got := Normalize(cs.in); got != cs.want {
			t.Errorf("Normalize(%q) = %q, want %q", cs.in, got, cs.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  Hello World  ", `"42"`, "1,2,3", " 1 , 2,3 ", "1, 2, 3.",
		"x!!!", "'a, b'", "mixed  Case, STRING .",
		`"42".`, "'a'.", "'1, 2'.", `"'x'"`, `'"nested".'!`, "'.'",
		"a, b.,", "'x, y.,'", "1,2,.",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
