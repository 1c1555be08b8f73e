package builtin

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/uvensys/agentgate/lib/generator"
)

func init() {
	generator.Register("simple_math", simpleMath{})
	generator.Register("word_math", wordMath{})
	generator.Register("binary", binary{})
}

type simpleMath struct{}

func (simpleMath) Generate(rng *rand.Rand) (string, string) {
	var task string
	var answer int

	switch rng.Intn(5) {
	case 0, 1: // weighted toward addition, like the classic pool
		a, b := 10+rng.Intn(990), 10+rng.Intn(990)
		answer = a + b
		switch rng.Intn(4) {
		case 0:
			task = fmt.Sprintf("What is %d + %d?", a, b)
		case 1:
			task = fmt.Sprintf("%s the sum of %d and %d.", generator.Verb(rng, "compute"), a, b)
		case 2:
			task = fmt.Sprintf("Add %d to %d.", a, b)
		default:
			task = fmt.Sprintf("If you combine %d and %d, what is the total?", a, b)
		}
	case 2:
		a := 100 + rng.Intn(900)
		b := 10 + rng.Intn(a-10)
		answer = a - b
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("What is %d - %d?", a, b)
		case 1:
			task = fmt.Sprintf("Subtract %d from %d.", b, a)
		default:
			task = fmt.Sprintf("If you take %d away from %d, what remains?", b, a)
		}
	case 3:
		a, b := 2+rng.Intn(29), 2+rng.Intn(29)
		answer = a * b
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("What is %d × %d?", a, b)
		case 1:
			task = fmt.Sprintf("Multiply %d by %d.", a, b)
		default:
			task = fmt.Sprintf("%s the product of %d and %d.", generator.Verb(rng, "compute"), a, b)
		}
	default:
		a, b, c := 10+rng.Intn(290), 10+rng.Intn(290), 10+rng.Intn(290)
		answer = a + b + c
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("What is %d + %d + %d?", a, b, c)
		case 1:
			task = fmt.Sprintf("Add together %d, %d, and %d.", a, b, c)
		default:
			task = fmt.Sprintf("Find the sum of these three numbers: %d, %d, %d.", a, b, c)
		}
	}

	return generator.BuildPrompt(rng, task), strconv.Itoa(answer)
}

type wordMath struct{}

func (wordMath) Generate(rng *rand.Rand) (string, string) {
	switch rng.Intn(4) {
	case 0: // spell out a small sum
		a := 1 + rng.Intn(10)
		b := 1 + rng.Intn(20-a)
		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("What is %d + %d? Write the answer as an English word, not a number.", a, b)
		case 1:
			task = fmt.Sprintf("Add %d and %d. Spell out the answer as a word.", a, b)
		default:
			task = fmt.Sprintf("%s %d + %d and write the result as a word, not a digit.", generator.Verb(rng, "compute"), a, b)
		}
		return generator.BuildPrompt(rng, task), numberWords[a+b]
	case 1: // character count
		w := pickWord(rng)
		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("How many characters are in the string %q?", w)
		case 1:
			task = fmt.Sprintf("Count the total number of letters in %q.", w)
		default:
			task = fmt.Sprintf("What is the length of the string %q?", w)
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(len(w))
	case 2: // vowel count
		w := pickWord(rng)
		n := 0
		for _, c := range w {
			if isVowel(c) {
				n++
			}
		}
		var task string
		switch rng.Intn(2) {
		case 0:
			task = fmt.Sprintf("How many vowels (A, E, I, O, U) are in %q?", w)
		default:
			task = fmt.Sprintf("Count the vowels in the string %q.", w)
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(n)
	default: // digit sum
		n := 100 + rng.Intn(99900)
		sum := 0
		for v := n; v > 0; v /= 10 {
			sum += v % 10
		}
		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("What is the sum of the digits of %d?", n)
		case 1:
			task = fmt.Sprintf("Add up each individual digit in the number %d.", n)
		default:
			task = fmt.Sprintf("Take the number %d and sum its digits together.", n)
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(sum)
	}
}

type binary struct{}

func (binary) Generate(rng *rand.Rand) (string, string) {
	if rng.Intn(2) == 0 {
		n := 5 + rng.Intn(250)
		b := strconv.FormatInt(int64(n), 2)
		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("%s binary %s to decimal.", generator.Verb(rng, "convert"), b)
		case 1:
			task = fmt.Sprintf("What is the decimal value of the binary number %s?", b)
		default:
			task = fmt.Sprintf("Express %s (binary) as a base-10 number.", b)
		}
		return generator.BuildPrompt(rng, task), strconv.Itoa(n)
	}

	n := 5 + rng.Intn(250)
	var task string
	switch rng.Intn(3) {
	case 0:
		task = fmt.Sprintf("%s the decimal number %d to binary.", generator.Verb(rng, "convert"), n)
	case 1:
		task = fmt.Sprintf("What is %d in binary?", n)
	default:
		task = fmt.Sprintf("Write %d as a binary number, without any 0b prefix.", n)
	}
	return generator.BuildPrompt(rng, task), strconv.FormatInt(int64(n), 2)
}
