package builtin

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/uvensys/agentgate/lib/generator"
)

func init() {
	generator.Register("reverse_string", reverseString{})
	generator.Register("string_length", stringLength{})
	generator.Register("extract_letters", extractLetters{})
	generator.Register("first_last", firstLast{})
	generator.Register("transform", transform{})
	generator.Register("sorting", sorting{})
}

type reverseString struct{}

func (reverseString) Generate(rng *rand.Rand) (string, string) {
	w := pickWord(rng)

	var task string
	switch rng.Intn(4) {
	case 0:
		task = fmt.Sprintf("%s the string %s.", generator.Verb(rng, "reverse"), w)
	case 1:
		task = fmt.Sprintf("Write the characters of %s in reverse order.", w)
	case 2:
		task = fmt.Sprintf("If you flip the string %s end-to-end, what do you get?", w)
	default:
		task = fmt.Sprintf("Read %s from right to left and write what you see.", w)
	}

	return generator.BuildPrompt(rng, task), strings.ToLower(reverse(w))
}

type stringLength struct{}

func (stringLength) Generate(rng *rand.Rand) (string, string) {
	// Occasionally glue two words together so the length isn't guessable
	// from the word pool alone.
	w := pickWord(rng)
	if rng.Intn(3) == 0 {
		w += pickWord(rng)
	}

	var task string
	switch rng.Intn(3) {
	case 0:
		task = fmt.Sprintf("How many characters does the string %q contain?", w)
	case 1:
		task = fmt.Sprintf("%s the length of %q.", generator.Verb(rng, "compute"), w)
	default:
		task = fmt.Sprintf("How long is the string %q?", w)
	}

	return generator.BuildPrompt(rng, task), strconv.Itoa(len(w))
}

type extractLetters struct{}

func (extractLetters) Generate(rng *rand.Rand) (string, string) {
	w := pickWord(rng)
	step := 2 + rng.Intn(2)

	// Interleave the answer word with noise letters so that positions
	// 1, 1+step, 1+2*step... spell the answer.
	var sb strings.Builder
	for _, c := range w {
		sb.WriteRune(c)
		for i := 0; i < step-1; i++ {
			sb.WriteByte(byte('A' + rng.Intn(26)))
		}
	}
	mixed := sb.String()
	mixed = mixed[:len(mixed)-(step-1)]

	var task string
	ordinal := map[int]string{2: "2nd", 3: "3rd"}[step]
	switch rng.Intn(3) {
	case 0:
		task = fmt.Sprintf("%s every %s letter from this string, starting from the 1st character: %s.", generator.Verb(rng, "extract"), ordinal, mixed)
	case 1:
		task = fmt.Sprintf("From the string %s, take the characters at positions 1, %d, %d, and so on.", mixed, 1+step, 1+2*step)
	default:
		task = fmt.Sprintf("Pick every %s character from %s, beginning with the first.", ordinal, mixed)
	}

	return generator.BuildPrompt(rng, task), strings.ToLower(w)
}

type firstLast struct{}

func (firstLast) Generate(rng *rand.Rand) (string, string) {
	w := pickWord(rng)
	lower := strings.ToLower(w)

	switch rng.Intn(3) {
	case 0:
		task := fmt.Sprintf("What is the first character of the string %q?", w)
		return generator.BuildPrompt(rng, task), lower[:1]
	case 1:
		task := fmt.Sprintf("What is the last character of the string %q?", w)
		return generator.BuildPrompt(rng, task), lower[len(lower)-1:]
	default:
		var task string
		if rng.Intn(2) == 0 {
			task = fmt.Sprintf("Give the first and last letters of %q, separated by a comma.", w)
		} else {
			task = fmt.Sprintf("%s the first letter and the last letter of %q as a comma-separated pair.", generator.Verb(rng, "extract"), w)
		}
		return generator.BuildPrompt(rng, task), lower[:1] + ", " + lower[len(lower)-1:]
	}
}

type transform struct{}

func (transform) Generate(rng *rand.Rand) (string, string) {
	switch rng.Intn(3) {
	case 0: // strip vowels
		w := pickWord(rng)
		var out strings.Builder
		for _, c := range w {
			if !isVowel(c) {
				out.WriteRune(c)
			}
		}
		var task string
		switch rng.Intn(2) {
		case 0:
			task = fmt.Sprintf("Remove all vowels (A, E, I, O, U) from %q.", w)
		default:
			task = fmt.Sprintf("Delete every vowel from the string %q. What remains?", w)
		}
		return generator.BuildPrompt(rng, task), strings.ToLower(out.String())
	case 1: // acronym from first letters
		p := pickPhrase(rng)
		var out strings.Builder
		for _, word := range strings.Fields(p) {
			out.WriteByte(word[0])
		}
		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("What do the first letters of each word spell: %q?", p)
		case 1:
			task = fmt.Sprintf("Take the initial letter of every word in %q and combine them.", p)
		default:
			task = fmt.Sprintf("Form an acronym from: %q.", p)
		}
		return generator.BuildPrompt(rng, task), strings.ToLower(out.String())
	default: // last letters
		p := pickPhrase(rng)
		var out strings.Builder
		for _, word := range strings.Fields(p) {
			out.WriteByte(word[len(word)-1])
		}
		task := fmt.Sprintf("Take the final letter of each word in %q and join them.", p)
		if rng.Intn(2) == 0 {
			task = fmt.Sprintf("What do the LAST letters of each word spell: %q?", p)
		}
		return generator.BuildPrompt(rng, task), strings.ToLower(out.String())
	}
}

type sorting struct{}

func (sorting) Generate(rng *rand.Rand) (string, string) {
	switch rng.Intn(3) {
	case 0: // letters ascending
		w := pickWord(rng)
		letters := strings.Split(strings.ToLower(w), "")
		sort.Strings(letters)
		var task string
		switch rng.Intn(2) {
		case 0:
			task = fmt.Sprintf("%s the letters of %s in alphabetical order, with no separators.", generator.Verb(rng, "sort"), w)
		default:
			task = fmt.Sprintf("Arrange the letters of %s from A to Z and write them as one string.", w)
		}
		return generator.BuildPrompt(rng, task), strings.Join(letters, "")
	case 1: // letters descending
		w := pickWord(rng)
		letters := strings.Split(strings.ToLower(w), "")
		sort.Sort(sort.Reverse(sort.StringSlice(letters)))
		task := fmt.Sprintf("%s the letters of %s in REVERSE alphabetical order (Z first, A last), with no separators.", generator.Verb(rng, "sort"), w)
		return generator.BuildPrompt(rng, task), strings.Join(letters, "")
	default: // numbers ascending, comma-separated answer
		n := 4 + rng.Intn(3)
		seen := map[int]bool{}
		var nums []int
		for len(nums) < n {
			v := 1 + rng.Intn(99)
			if !seen[v] {
				seen[v] = true
				nums = append(nums, v)
			}
		}

		var shown []string
		for _, v := range nums {
			shown = append(shown, strconv.Itoa(v))
		}

		sorted := append([]int(nil), nums...)
		sort.Ints(sorted)
		var answer []string
		for _, v := range sorted {
			answer = append(answer, strconv.Itoa(v))
		}

		var task string
		switch rng.Intn(3) {
		case 0:
			task = fmt.Sprintf("%s these numbers from smallest to largest: %s.", generator.Verb(rng, "sort"), strings.Join(shown, ", "))
		case 1:
			task = fmt.Sprintf("Arrange in ascending order: %s.", strings.Join(shown, ", "))
		default:
			task = fmt.Sprintf("Put these numbers in order from lowest to highest: %s.", strings.Join(shown, ", "))
		}
		return generator.BuildPrompt(rng, task), strings.Join(answer, ", ")
	}
}
