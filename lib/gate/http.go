package gate

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/uvensys/agentgate/internal"
)

// gateBody is the request body of the HTTP adapter. Anything that doesn't
// decode into a JSON object is treated as an empty body.
type gateBody struct {
	ChallengeToken string `json:"challenge_token"`
	Answer         string `json:"answer"`
}

// GateHTTP adapts raw HTTP material onto Gate: the persistent token comes
// from "Authorization: Bearer <token>" (header lookup is case-insensitive),
// challenge_token and answer from the JSON body.
func (g *Gate) GateHTTP(headers http.Header, body []byte) Result {
	var tok string
	if auth := headers.Get("Authorization"); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		tok = strings.TrimSpace(auth[7:])
	}

	var b gateBody
	if len(body) > 0 {
		// json.Unmarshal into a struct rejects non-object JSON, which is
		// exactly the "treat as empty" behavior the contract wants.
		if err := json.Unmarshal(body, &b); err != nil {
			b = gateBody{}
		}
	}

	return g.Gate(tok, b.ChallengeToken, b.Answer)
}

// Handler mounts the gate as a JSON POST endpoint: 200 when authenticated,
// 401 otherwise. It exists so cmd/agentgate stays a thin shell; embedders
// that already have a router can call GateHTTP directly.
func (g *Gate) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lg := internal.GetRequestLogger(r)

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Cap the body read; the two fields we care about are tiny.
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
		if err != nil {
			lg.Debug("can't read request body", "err", err)
			body = nil
		}

		result := g.GateHTTP(r.Header, body)

		status := http.StatusUnauthorized
		if result.Status == StatusAuthenticated {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(result.ToDict()); err != nil {
			lg.Error("failed to encode gate result", "err", err)
		}
	})
}
