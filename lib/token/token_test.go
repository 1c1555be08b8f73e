package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
)

type testPayload struct {
	ID         string `json:"id"`
	AnswerHash string `json:"answer_hash"`
	ExpiresAt  int64  `json:"expires_at"`
}

func TestRoundTrip(t *testing.T) {
	for _, secret := range []string{"test-secret-key-12", "another-secret-9", "short-but-valid"} {
		c := NewCodec([]byte(secret))

		in := testPayload{ID: "ch_deadbeef", AnswerHash: "abc123", ExpiresAt: 1700000000}
		tok, err := c.Encode(in)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		var out testPayload
		if err := c.Decode(tok, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}

		if out != in {
			t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
		}
	}
}

func TestTamperEvidence(t *testing.T) {
	c := NewCodec([]byte("test-secret-key-12"))

	tok, err := c.Encode(testPayload{ID: "ch_1", AnswerHash: "aaaa", ExpiresAt: 99})
	if err != nil {
		t.Fatal(err)
	}

	// Flipping any single character anywhere in the token must break it.
	for i := 0; i < len(tok); i++ {
		mutated := []byte(tok)
		if mutated[i] == 'x' {
			mutated[i] = 'y'
		} else {
			mutated[i] = 'x'
		}

		var out testPayload
		if err := c.Decode(string(mutated), &out); err == nil {
			t.Errorf("decode accepted token mutated at offset %d", i)
		}
	}
}

func TestSecretIsolation(t *testing.T) {
	a := NewCodec([]byte("secret-server-A-123"))
	b := NewCodec([]byte("secret-server-B-456"))

	tok, err := a.Encode(testPayload{ID: "ch_iso"})
	if err != nil {
		t.Fatal(err)
	}

	var out testPayload
	if err := b.Decode(tok, &out); !errors.Is(err, ErrBadSignature) {
		t.Errorf("decode with wrong secret: got %v, want ErrBadSignature", err)
	}
}

func TestMalformed(t *testing.T) {
	c := NewCodec([]byte("test-secret-key-12"))

	for _, tok := range []string{"", "no-separator", ".leadingdot", "trailingdot."} {
		var out testPayload
		if err := c.Decode(tok, &out); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q) = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestBadSignatureTag(t *testing.T) {
	c := NewCodec([]byte("test-secret-key-12"))

	tok, err := c.Encode(testPayload{ID: "ch_sig"})
	if err != nil {
		t.Fatal(err)
	}

	var out testPayload
	if err := c.Decode(tok+"00", &out); !errors.Is(err, ErrBadSignature) {
		t.Errorf("got %v, want ErrBadSignature", err)
	}

	// Signature segment that isn't hex at all.
	data := tok[:len(tok)-65]
	if err := c.Decode(data+".zzzz", &out); !errors.Is(err, ErrBadSignature) {
		t.Errorf("non-hex signature: got %v, want ErrBadSignature", err)
	}
}

func TestCorruptPayload(t *testing.T) {
	secret := []byte("test-secret-key-12")
	c := NewCodec(secret)

	// Correctly signed garbage: valid signature over a payload that is not
	// base64url JSON. The codec must reject it after signature verification
	// instead of panicking or leaking bytes.
	for _, data := range []string{"!!!not-base64!!!", base64.RawURLEncoding.EncodeToString([]byte("not json"))} {
		mac := hmac.New(sha256.New, secret)
		mac.Write([]byte(data))
		tok := data + "." + hex.EncodeToString(mac.Sum(nil))

		var out testPayload
		if err := c.Decode(tok, &out); !errors.Is(err, ErrCorruptPayload) {
			t.Errorf("Decode(%q) = %v, want ErrCorruptPayload", data, err)
		}
	}
}
