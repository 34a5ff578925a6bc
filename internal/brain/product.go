package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	productSearchLimit = 6
	productMaxResults  = 4
	productWindow      = 4
	productSnippetMax  = 500
)

const ProductUsage = "Use `/product <question>` to search product docs. Example: `/product TrendyolGO pod adjust requirements`."

var docPathKeywords = []string{"docs/", "doc/", "handbook", "guide", "runbook", "spec", "adr", "readme", "wiki"}

type productHit struct {
	repo    string
	path    string
	line    int
	snippet string
}

// ProductSearch answers `/product` questions with snippets from
// documentation-like paths across every repository.
type ProductSearch struct {
	searcher CodeSearcher
}

func NewProductSearch(searcher CodeSearcher) *ProductSearch {
	return &ProductSearch{searcher: searcher}
}

func (p *ProductSearch) Answer(ctx context.Context, query string) string {
	ctx = withComponent(ctx, "triage.brain.product")
	query = strings.TrimSpace(query)
	if query == "" {
		return ProductUsage
	}

	hits := p.gather(ctx, query)
	slog.InfoContext(ctx, "product query answered", "query", query, "hits", len(hits))
	if len(hits) == 0 {
		return fmt.Sprintf("I couldn't find any product docs mentioning “%s”. "+
			"Try refining the query or share more context so I can point you to the right runbook.", query)
	}

	parts := []string{fmt.Sprintf("Product context for `%s`:", query)}
	for _, h := range hits {
		parts = append(parts, fmt.Sprintf("- `%s:%s:%d`\n```text\n%s\n```", h.repo, h.path, h.line, trimSnippet(h.snippet)))
	}
	parts = append(parts, "Need deeper details? Follow up with `/product <more context>`.")
	return strings.Join(parts, "\n\n")
}

func (p *ProductSearch) gather(ctx context.Context, query string) []productHit {
	var hits []productHit
	for _, repo := range p.searcher.ListRepos() {
		for _, m := range p.searcher.SearchCode(ctx, repo, query, productSearchLimit, nil) {
			if !isDocPath(m.Path) {
				continue
			}
			snippet, ok := p.searcher.ReadFile(ctx, repo, m.Path, max(m.Line-productWindow, 1), m.Line+productWindow)
			if !ok || snippet == "" {
				snippet = m.Preview
			}
			snippet = strings.TrimSpace(snippet)
			if snippet == "" {
				continue
			}
			hits = append(hits, productHit{repo: repo, path: m.Path, line: m.Line, snippet: snippet})
			if len(hits) >= productMaxResults {
				return hits
			}
		}
	}
	return hits
}

func isDocPath(path string) bool {
	lower := strings.ToLower(path)
	for _, kw := range docPathKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func trimSnippet(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > productSnippetMax {
		return string(runes[:productSnippetMax]) + "…"
	}
	return s
}
