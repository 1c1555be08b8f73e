package engine

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize canonicalizes an answer before hashing. This is the only place
// answer equivalence is decided, which is what lets a generator emit "12, 34"
// and still accept "12,34" or "12 , 34 ,". Generators are required to emit
// answers that are already fixed points of this function; generator.SelfCheck
// enforces that at test time.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(answer string) string {
	s := strings.ToLower(strings.TrimSpace(answer))
	s = whitespaceRun.ReplaceAllString(s, " ")

	// The stages can mask each other: `'42'.` hides the quotes behind the
	// period, `a, b.,` hides the period behind a dangling comma. Run quote
	// strip, punctuation strip and comma re-join until the string stops
	// changing; a single fixed pass would not be a fixed point.
	for {
		prev := s

		if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}

		s = strings.TrimSpace(strings.TrimRight(s, ".!"))

		if strings.Contains(s, ",") {
			var parts []string
			for _, part := range strings.Split(s, ",") {
				if part = strings.TrimSpace(part); part != "" {
					parts = append(parts, part)
				}
			}
			s = strings.Join(parts, ", ")
		}

		if s == prev {
			break
		}
	}

	return s
}
