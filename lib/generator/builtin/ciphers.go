package builtin

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/uvensys/agentgate/lib/generator"
)

func init() {
	generator.Register("rot13", rot13{})
	generator.Register("caesar", caesar{})
	generator.Register("letter_position", letterPosition{})
}

type rot13 struct{}

func (rot13) Generate(rng *rand.Rand) (string, string) {
	w := pickWord(rng)
	enc := shiftLetters(w, 13)

	var task string
	switch rng.Intn(4) {
	case 0:
		task = fmt.Sprintf("%s this ROT13-encoded string (each letter shifts 13 places in the alphabet): %s.", generator.Verb(rng, "decode"), enc)
	case 1:
		task = fmt.Sprintf("Apply ROT13 decoding to the text %s.", enc)
	case 2:
		task = fmt.Sprintf("The following text was encoded with ROT13. Decode it: %s.", enc)
	default:
		task = fmt.Sprintf("Shift each letter in %s by 13 positions in the alphabet to decode it.", enc)
	}

	return generator.BuildPrompt(rng, task), strings.ToLower(w)
}

type caesar struct{}

func (caesar) Generate(rng *rand.Rand) (string, string) {
	w := pickWord(rng)
	shift := 1 + rng.Intn(7)
	enc := shiftLetters(w, shift)

	var task string
	switch rng.Intn(3) {
	case 0:
		task = fmt.Sprintf("The text %s was encrypted with a Caesar shift of %d. %s it by shifting each letter back by %d.", enc, shift, generator.Verb(rng, "decode"), shift)
	case 1:
		task = fmt.Sprintf("Apply a reverse Caesar shift of %d to decode %s.", shift, enc)
	default:
		task = fmt.Sprintf("This message was encoded by shifting each letter forward by %d in the alphabet: %s. What is the original text?", shift, enc)
	}

	return generator.BuildPrompt(rng, task), strings.ToLower(w)
}

type letterPosition struct{}

func (letterPosition) Generate(rng *rand.Rand) (string, string) {
	w := pickWord(rng)
	sum := 0
	for _, c := range w {
		sum += int(c-'A') + 1
	}

	var task string
	switch rng.Intn(4) {
	case 0:
		task = fmt.Sprintf("If A=1, B=2, C=3, ... Z=26, what is the sum of the letter values in %q?", w)
	case 1:
		task = fmt.Sprintf("Assign each letter a number (A=1, B=2, through Z=26) and add up the values of all letters in %q.", w)
	case 2:
		task = fmt.Sprintf("Using the mapping A=1, B=2, ..., Z=26, %s the total value of the letters in %q.", strings.ToLower(generator.Verb(rng, "compute")), w)
	default:
		task = fmt.Sprintf("Each letter has a position in the alphabet (A=1, Z=26). What is the sum of positions for the letters in %q?", w)
	}

	return generator.BuildPrompt(rng, task), strconv.Itoa(sum)
}
