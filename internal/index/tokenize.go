// Package index builds the inverted token index used by context search to
// find candidate entry points for a free-text query.
package index

import (
	"regexp"
	"strings"
)

// nonToken matches any character that is neither a word character
// ([A-Za-z0-9_]), whitespace, nor a hyphen. Runs of these are collapsed to
// a single space before splitting. Hyphens are retained inside tokens, so
// "docker-compose" tokenizes as one token — a deliberate limitation, not
// an oversight.
var nonToken = regexp.MustCompile(`[^\w\s-]+`)

// minTokenLen is the shortest token kept after splitting; tokens of length
// <= 2 are discarded as noise.
const minTokenLen = 3

// Tokenize normalizes text into the token set used both to build the
// inverted index and to parse a search query: lowercase, replace any
// character that isn't a word character, whitespace, or hyphen with a
// space, split on whitespace, and discard tokens of length <= 2.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	cleaned := nonToken.ReplaceAllString(lower, " ")

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
