package internal

import "testing"

func TestSHA256sum(t *testing.T) {
	// Known vector: sha256("20")
	const want = "f5ca38f748a1d6eaf726b8a42fb575c3c71f1864a8143301782de13da2d9202b"
	if got := SHA256sum("20"); got != want {
		t.Errorf("SHA256sum(\"20\") = %s, want %s", got, want)
	}

	if SHA256sum("a") == SHA256sum("b") {
		t.Error("distinct inputs must not collide")
	}
}

func TestFastHashStable(t *testing.T) {
	a := FastHash("some.token.value")
	b := FastHash("some.token.value")
	if a != b {
		t.Errorf("FastHash is not stable: %s != %s", a, b)
	}

	if FastHash("token-one") == FastHash("token-two") {
		t.Error("fingerprints for different tokens should differ")
	}
}

func BenchmarkSHA256sum(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SHA256sum("the quick brown fox jumps over the lazy dog")
	}
}

func BenchmarkFastHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		FastHash("the quick brown fox jumps over the lazy dog")
	}
}
