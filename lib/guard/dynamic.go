package guard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const dynamicSystemPrompt = `You write reasoning challenges for verifying that a client is an AI agent.

Create ONE novel, self-contained reasoning puzzle (math, string manipulation, pattern, or cipher). It must have exactly one short correct answer and be solvable without tools in a few seconds.

Respond with EXACTLY one JSON object on a single line, nothing else:
{"prompt": "the challenge text, ending with an instruction to reply with only the answer", "answer": "the short answer"}`

var dynamicObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// GenerateDynamic asks an LLM provider for a novel (prompt, answer) pair at
// roughly the given difficulty. Callers plug it into the engine as the
// Dynamic hook; any error there falls back to static generation, so this
// never has to be reliable, just honest about failure.
func GenerateDynamic(ctx context.Context, client *Client, difficulty string) (prompt, answer string, err error) {
	user := "Generate one new challenge."
	if difficulty != "" {
		user = fmt.Sprintf("Generate one new challenge at %q difficulty.", difficulty)
	}

	response, err := client.Complete(ctx, dynamicSystemPrompt, user, 200)
	if err != nil {
		return "", "", err
	}

	match := dynamicObjectRe.FindString(response)
	if match == "" || !gjson.Valid(match) {
		return "", "", fmt.Errorf("guard: %s returned no usable challenge object", client.Provider())
	}

	prompt = strings.TrimSpace(gjson.Get(match, "prompt").String())
	answer = strings.TrimSpace(gjson.Get(match, "answer").String())
	if prompt == "" || answer == "" {
		return "", "", fmt.Errorf("guard: %s challenge object is missing prompt or answer", client.Provider())
	}

	// A generated prompt gets the same scrutiny as one from an untrusted
	// gate: the model could have been poisoned upstream.
	verdict, err := ValidatePrompt(ctx, prompt, ValidateOpts{})
	if err != nil {
		return "", "", err
	}
	if !verdict.Safe {
		return "", "", newError(ErrPromptRejected, "generated prompt flagged: %s", verdict.Reason)
	}

	return prompt, answer, nil
}

// Dynamic adapts GenerateDynamic into the engine's hook shape, currying the
// client and difficulty.
func Dynamic(client *Client, difficulty string) func(ctx context.Context) (string, string, error) {
	return func(ctx context.Context) (string, string, error) {
		return GenerateDynamic(ctx, client, difficulty)
	}
}
