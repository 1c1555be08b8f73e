package guard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Provider names an LLM backend. The set is closed: only the three constants
// below are valid, anything else is a caller bug.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

const (
	defaultTimeout = 10 * time.Second
	maxTimeout     = 20 * time.Second
)

// providerOrder is also the env-var autodetection priority.
var providerOrder = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

func envKeyFor(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderGoogle:
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}

func defaultModelFor(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-sonnet-4-20250514"
	case ProviderGoogle:
		return "gemini-2.0-flash"
	default:
		return ""
	}
}

func defaultBaseURLFor(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "https://api.openai.com"
	case ProviderAnthropic:
		return "https://api.anthropic.com"
	case ProviderGoogle:
		return "https://generativelanguage.googleapis.com"
	default:
		return ""
	}
}

// Client is a minimal completion client over raw provider HTTP APIs. No
// vendor SDKs: each provider needs one request body shape and one response
// path, which sjson and gjson cover.
type Client struct {
	provider Provider
	apiKey   string
	model    string
	baseURL  string
	httpc    *http.Client
}

// NewClient builds a client for one provider. An empty model selects the
// provider's default.
func NewClient(provider Provider, apiKey, model string) (*Client, error) {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
	default:
		return nil, fmt.Errorf("guard: unknown provider %q (supported: openai, anthropic, google)", provider)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("guard: no API key for provider %q", provider)
	}
	if model == "" {
		model = defaultModelFor(provider)
	}

	return &Client{
		provider: provider,
		apiKey:   apiKey,
		model:    model,
		baseURL:  defaultBaseURLFor(provider),
		httpc:    &http.Client{},
	}, nil
}

// DetectClient picks the first provider with an API key in the environment,
// in priority order openai, anthropic, google.
func DetectClient(model string) (*Client, bool) {
	for _, p := range providerOrder {
		if key := envKeyFor(p); key != "" {
			c, err := NewClient(p, key, model)
			if err != nil {
				continue
			}
			return c, true
		}
	}
	return nil, false
}

// Provider reports which backend this client talks to.
func (c *Client) Provider() Provider { return c.provider }

// Complete sends a (system, user) message pair and returns the model's text
// response. The context deadline bounds the call; with no deadline a 10s
// default applies, and anything longer than 20s is clamped.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url, body, err := c.buildRequest(system, user, maxTokens)
	if err != nil {
		return "", fmt.Errorf("guard: can't build %s request: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	switch c.provider {
	case ProviderOpenAI:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	case ProviderAnthropic:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	case ProviderGoogle:
		// Key travels in the URL.
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("guard: %s call failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("guard: can't read %s response: %w", c.provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("guard: %s returned status %d", c.provider, resp.StatusCode)
	}

	text := gjson.GetBytes(data, c.extractPath()).String()
	if text == "" {
		return "", fmt.Errorf("guard: %s response carried no text", c.provider)
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) buildRequest(system, user string, maxTokens int) (url, body string, err error) {
	switch c.provider {
	case ProviderOpenAI:
		url = c.baseURL + "/v1/chat/completions"
		body, err = sjson.Set("", "model", c.model)
		if err == nil {
			body, err = sjson.Set(body, "temperature", 0)
		}
		if err == nil {
			body, err = sjson.Set(body, "max_tokens", maxTokens)
		}
		if err == nil {
			body, err = sjson.Set(body, "messages.-1", map[string]any{"role": "system", "content": system})
		}
		if err == nil {
			body, err = sjson.Set(body, "messages.-1", map[string]any{"role": "user", "content": user})
		}

	case ProviderAnthropic:
		url = c.baseURL + "/v1/messages"
		body, err = sjson.Set("", "model", c.model)
		if err == nil {
			body, err = sjson.Set(body, "max_tokens", maxTokens)
		}
		if err == nil {
			body, err = sjson.Set(body, "temperature", 0)
		}
		if err == nil {
			body, err = sjson.Set(body, "system", system)
		}
		if err == nil {
			body, err = sjson.Set(body, "messages.-1", map[string]any{"role": "user", "content": user})
		}

	case ProviderGoogle:
		url = c.baseURL + "/v1beta/models/" + c.model + ":generateContent?key=" + c.apiKey
		body, err = sjson.Set("", "systemInstruction.parts.0.text", system)
		if err == nil {
			body, err = sjson.Set(body, "contents.-1", map[string]any{
				"role":  "user",
				"parts": []map[string]any{{"text": user}},
			})
		}
		if err == nil {
			body, err = sjson.Set(body, "generationConfig.temperature", 0)
		}
		if err == nil {
			body, err = sjson.Set(body, "generationConfig.maxOutputTokens", maxTokens)
		}
	}

	return url, body, err
}

// Keys is an explicit per-provider API-key mapping for callers that manage
// credentials themselves instead of through the environment. Populate it
// during setup, before serving concurrent traffic; it is not locked.
type Keys map[Provider]string

// Client resolves a client from the mapping. An empty provider picks the
// first one with a key, in the usual priority order, falling back to the
// environment when the mapping has none.
func (k Keys) Client(provider Provider, model string) (*Client, error) {
	if provider != "" {
		key := k[provider]
		if key == "" {
			key = envKeyFor(provider)
		}
		return NewClient(provider, key, model)
	}

	for _, p := range providerOrder {
		if key := k[p]; key != "" {
			return NewClient(p, key, model)
		}
	}
	if c, ok := DetectClient(model); ok {
		return c, nil
	}
	return nil, fmt.Errorf("guard: no provider API key configured")
}

func (c *Client) extractPath() string {
	switch c.provider {
	case ProviderOpenAI:
		return "choices.0.message.content"
	case ProviderAnthropic:
		return "content.0.text"
	case ProviderGoogle:
		return "candidates.0.content.parts.0.text"
	default:
		return ""
	}
}
