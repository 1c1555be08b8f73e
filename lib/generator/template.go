package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// Prompt assembly. Instead of a handful of fixed phrasings, every prompt is
// built from interchangeable word pools, structural wrappers, optional decoy
// suffixes and combinatorial reply instructions. The combinatorial space per
// type runs into the thousands, which is what makes substring/regex solvers
// that sample many prompts of one type unreliable.

var verbPools = map[string][]string{
	"reverse": {
		"Reverse", "Flip", "Mirror", "Invert", "Spell backwards",
		"Write in reverse order", "Read backwards", "Turn around",
	},
	"compute": {
		"Calculate", "Compute", "Find", "Determine", "Work out",
		"Figure out", "Evaluate", "What is",
	},
	"decode": {
		"Decode", "Decipher", "Decrypt", "Unscramble", "Reveal",
		"Uncover", "Crack",
	},
	"extract": {
		"Extract", "Pull out", "Pick", "Select", "Grab",
		"Take", "Isolate",
	},
	"count": {
		"Count", "Tally", "Find the number of", "Determine how many",
	},
	"sort": {
		"Sort", "Arrange", "Order", "Rearrange", "Put in order",
	},
	"convert": {
		"Convert", "Transform", "Translate", "Express", "Rewrite",
	},
}

var connectors = []string{
	"then", "and then", "next", "after that",
	"followed by", "with that result",
}

var resultRefs = []string{
	"the result", "what you get", "the output",
	"your answer", "that",
}

var wrappers = []string{
	"{task}",
	"Your task: {task}",
	"Instruction: {task}",
	"Complete this: {task}",
	"Please {task_lower}",
	"I need you to {task_lower}",
	"Can you {task_lower}",
	"Here's a puzzle: {task}",
	"Challenge: {task}",
	"Quick task: {task_lower}",
}

var (
	replyPartsA = []string{
		"Reply with", "Respond with", "Give me", "Output",
		"Write", "Return", "Answer with", "Send back",
		"Provide", "Type",
	}
	replyPartsB = []string{
		"ONLY the answer", "just the answer", "nothing but the answer",
		"the answer alone", "only the final result", "just the result",
		"a single value only", "the answer, nothing more",
	}
	replyPartsC = []string{
		".", ", nothing else.", ". No extra text.", ". Keep it brief.",
		". That's it.", ". Just that.",
	}
)

func pickString(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

// Verb draws a task verb for the given category.
func Verb(rng *rand.Rand, category string) string {
	pool, ok := verbPools[category]
	if !ok {
		pool = verbPools["compute"]
	}
	return pickString(rng, pool)
}

func Connector(rng *rand.Rand) string {
	return pickString(rng, connectors)
}

func ResultRef(rng *rand.Rand) string {
	return pickString(rng, resultRefs)
}

// ReplyInst assembles a "reply with only the answer" instruction from
// combinatorial parts.
func ReplyInst(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s%s",
		pickString(rng, replyPartsA),
		pickString(rng, replyPartsB),
		pickString(rng, replyPartsC))
}

func randHex(rng *rand.Rand) string {
	const digits = "0123456789abcdef"
	n := 6 + rng.Intn(7)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(digits[rng.Intn(len(digits))])
	}
	return sb.String()
}

// decoy returns an irrelevant suffix (or nothing, half the time). Decoys sit
// between the instruction and the reply clause so regex parsers have to
// filter them out.
func decoy(rng *rand.Rand) string {
	switch rng.Intn(8) {
	case 0:
		return fmt.Sprintf(" (Session %s)", randHex(rng))
	case 1:
		return fmt.Sprintf(" [ref:%s]", randHex(rng))
	case 2:
		return fmt.Sprintf(" (task #%d)", 1000+rng.Intn(9000))
	case 3:
		return fmt.Sprintf(" [attempt %d]", 1+rng.Intn(5))
	default:
		return ""
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// BuildPrompt wraps a plain task like "Reverse the string HELLO" in random
// structural variation and appends a reply instruction. Every generator
// routes its task text through here.
func BuildPrompt(rng *rand.Rand, task string) string {
	wrapper := pickString(rng, wrappers)

	var prompt string
	if strings.Contains(wrapper, "{task_lower}") {
		prompt = strings.Replace(wrapper, "{task_lower}", lowerFirst(task), 1)
	} else {
		prompt = strings.Replace(wrapper, "{task}", task, 1)
	}

	d := decoy(rng)
	reply := ReplyInst(rng)

	if rng.Intn(10) < 3 {
		return fmt.Sprintf("%s %s%s", reply, prompt, d)
	}
	return fmt.Sprintf("%s%s %s", prompt, d, reply)
}
