package builtin

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/uvensys/agentgate/lib/generator"
)

func init() {
	generator.Register("pattern", pattern{})
	generator.Register("counting", counting{})
}

type pattern struct{}

func (pattern) Generate(rng *rand.Rand) (string, string) {
	var terms []int
	switch rng.Intn(3) {
	case 0: // arithmetic
		start := 1 + rng.Intn(20)
		step := 2 + rng.Intn(8)
		for i := 0; i < 5; i++ {
			terms = append(terms, start+i*step)
		}
	case 1: // geometric
		start := 1 + rng.Intn(5)
		ratio := 2 + rng.Intn(2)
		v := start
		for i := 0; i < 5; i++ {
			terms = append(terms, v)
			v *= ratio
		}
	default: // additive, Fibonacci-style
		a := 1 + rng.Intn(5)
		b := a + rng.Intn(5)
		terms = []int{a, b}
		for len(terms) < 5 {
			terms = append(terms, terms[len(terms)-2]+terms[len(terms)-1])
		}
	}

	answer := terms[len(terms)-1]
	var shown []string
	for _, v := range terms[:len(terms)-1] {
		shown = append(shown, strconv.Itoa(v))
	}
	seq := strings.Join(shown, ", ")

	var task string
	switch rng.Intn(4) {
	case 0:
		task = fmt.Sprintf("What comes next in this sequence: %s, ?", seq)
	case 1:
		task = fmt.Sprintf("Find the next number: %s, ?", seq)
	case 2:
		task = fmt.Sprintf("Continue this pattern: %s, ?", seq)
	default:
		task = fmt.Sprintf("Identify the next value in the series %s.", seq)
	}

	return generator.BuildPrompt(rng, task), strconv.Itoa(answer)
}

type counting struct{}

func (counting) Generate(rng *rand.Rand) (string, string) {
	switch rng.Intn(3) {
	case 0: // occurrences of one letter
		w := pickWord(rng) + pickWord(rng)
		target := rune(w[rng.Intn(len(w))])
		n := strings.Count(w, string(target))
		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("How many times does the letter %q appear in %q?", string(target), w)
		case 1:
			task = fmt.Sprintf("%s occurrences of %q in the string %q.", generator.Verb(rng, "count"), string(target), w)
		default:
			task = fmt.Sprintf("In %q, how many %q characters are there?", w, string(target))
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(n)
	case 1: // consonants
		w := pickWord(rng)
		n := 0
		for _, c := range w {
			if !isVowel(c) {
				n++
			}
		}
		var task string
		switch rng.Intn(2) {
		case 0:
			task = fmt.Sprintf("How many consonants (non-vowel letters) are in %q?", w)
		default:
			task = fmt.Sprintf("%s consonants in the string %q.", generator.Verb(rng, "count"), w)
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(n)
	default: // uppercase letters in a mixed-case string
		w := pickWord(rng) + pickWord(rng)
		var sb strings.Builder
		upper := 0
		for _, c := range w {
			if rng.Intn(2) == 0 {
				sb.WriteRune(c)
				upper++
			} else {
				sb.WriteString(strings.ToLower(string(c)))
			}
		}
		mixed := sb.String()
		var task string
		switch rng.Intn(2) {
		case 0:
			task = fmt.Sprintf("How many UPPERCASE letters are in %q?", mixed)
		default:
			task = fmt.Sprintf("%s the capital letters in %q.", generator.Verb(rng, "count"), mixed)
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(upper)
	}
}
