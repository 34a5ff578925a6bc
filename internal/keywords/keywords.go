// Package keywords turns free incident text into ranked keyword lists.
//
// Two tokenizers exist and are used in different places: Broad feeds evidence
// gathering and keeps short identifiers such as "5xx" or "db_pool"; Narrow
// feeds the deterministic analyzer and keeps only alphabetic words.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

const (
	DefaultBroadLimit  = 12
	DefaultNarrowLimit = 4
)

var (
	broadToken  = regexp.MustCompile(`[a-z0-9_-]{2,}`)
	narrowToken = regexp.MustCompile(`[a-z]{4,}`)
)

var broadStopWords = stopSet(
	"probabl", "triage", "issue", "issues", "please", "thanks", "thank",
	"hello", "hey", "team", "update", "updated", "cc", "clarisights",
)

var narrowStopWords = stopSet(
	"the", "this", "that", "have", "error", "issue", "with", "when", "from",
	"user", "users", "request", "requests", "failed", "failing", "frontend",
	"backend", "prod", "production",
)

// Broad ranks tokens by descending frequency, ties broken by first
// appearance. Pure digit tokens are dropped.
func Broad(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultBroadLimit
	}

	type count struct {
		token string
		first int
		n     int
	}
	counts := make(map[string]*count)
	var order []*count
	for _, token := range broadToken.FindAllString(strings.ToLower(text), -1) {
		if _, stop := broadStopWords[token]; stop || isDigits(token) {
			continue
		}
		c, ok := counts[token]
		if !ok {
			c = &count{token: token, first: len(order)}
			counts[token] = c
			order = append(order, c)
		}
		c.n++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].n > order[j].n
	})

	out := make([]string, 0, min(limit, len(order)))
	for _, c := range order[:min(limit, len(order))] {
		out = append(out, c.token)
	}
	return out
}

// Narrow returns unique alphabetic tokens of at least four letters in the
// order they first appear.
func Narrow(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultNarrowLimit
	}

	seen := make(map[string]struct{})
	var out []string
	for _, token := range narrowToken.FindAllString(strings.ToLower(text), -1) {
		if _, stop := narrowStopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func stopSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
