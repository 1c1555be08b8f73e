// Package builtin registers the built-in puzzle generators. Import it for its
// side effects:
//
//	import _ "github.com/uvensys/agentgate/lib/generator/builtin"
//
// Every generator emits answers in canonical normalized form; the engine's
// tests run generator.SelfCheck against the full registry to keep that honest.
package builtin

import (
	"math/rand"
	"strings"
)

// Puzzle material. Letters only, so cipher and letter-value puzzles stay
// well-defined.
var words = []string{
	"PUZZLE", "ORANGE", "SILVER", "MARBLE", "PLANET", "GARDEN",
	"CASTLE", "WINTER", "BRIDGE", "FOREST", "ROCKET", "PILLOW",
	"CANDLE", "THUNDER", "LANTERN", "COMPASS", "HARBOR", "MEADOW",
	"FALCON", "GLACIER", "VIOLET", "SADDLE", "TUNNEL", "ANCHOR",
	"BAMBOO", "CIRCUS", "DOLPHIN", "EMERALD", "HAMMER", "ISLAND",
}

var phrases = []string{
	"Green Apples Taste Excellent",
	"Silent Owls Fly East",
	"Red Foxes Jump Quickly",
	"Old Trains Move Slowly",
	"Brave Ants Carry Crumbs",
	"Small Boats Drift North",
	"Wild Horses Run Free",
	"Tall Pines Sway Gently",
}

func pickWord(rng *rand.Rand) string {
	return words[rng.Intn(len(words))]
}

func pickPhrase(rng *rand.Rand) string {
	return phrases[rng.Intn(len(phrases))]
}

func shiftLetters(s string, shift int) string {
	shift = ((shift % 26) + 26) % 26
	var sb strings.Builder
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
			sb.WriteRune('A' + (c-'A'+rune(shift))%26)
		case c >= 'a' && c <= 'z':
			sb.WriteRune('a' + (c-'a'+rune(shift))%26)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func isVowel(c rune) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// numberWords covers every sum the word-math generator can produce.
var numberWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven",
	"eight", "nine", "ten", "eleven", "twelve", "thirteen", "fourteen",
	"fifteen", "sixteen", "seventeen", "eighteen", "nineteen", "twenty",
}
