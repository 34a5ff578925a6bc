package brain

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/internal/hints"
	"basegraph.app/triage/internal/keywords"
	"basegraph.app/triage/internal/model"
)

const (
	evidenceSearchLimit = 2
	evidenceWindow      = 3
	dynamicSearchLimit  = 3
	maxDynamicDirs      = 5
	commitsPerRepo      = 2
	fallbackKeyword     = "incident"
)

// CodeSearcher is the cached search surface of the repository registry.
type CodeSearcher interface {
	ListRepos() []string
	SearchCode(ctx context.Context, repo, keyword string, limit int, directories []string) []model.RepoMatch
	ReadFile(ctx context.Context, repo, path string, start, end int) (string, bool)
	RecentCommits(ctx context.Context, repo string, limit int) []model.RepoCommit
}

type HintResolver interface {
	Resolve(ctx context.Context, keywords []string, topic string, repos []string) hints.Resolution
}

type OrchestratorConfig struct {
	IncludeCommits bool
	KeywordLimit   int
}

// Orchestrator collects evidence snippets for a triage request from every
// repository the hint resolver selects.
type Orchestrator struct {
	cfg      OrchestratorConfig
	searcher CodeSearcher
	hints    HintResolver
}

func NewOrchestrator(cfg OrchestratorConfig, searcher CodeSearcher, resolver HintResolver) *Orchestrator {
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = keywords.DefaultBroadLimit
	}
	return &Orchestrator{cfg: cfg, searcher: searcher, hints: resolver}
}

func (o *Orchestrator) Gather(ctx context.Context, req model.TriageRequest) []model.ToolResult {
	ctx = withComponent(ctx, "triage.brain.orchestrator")
	sc := logger.StartSpan(ctx, "brain.orchestrator.gather")
	defer sc.End()
	ctx = sc.Context()

	parts := append([]string{req.IncidentText}, req.ThreadContext...)
	if topic := req.TopicName(); topic != "" {
		parts = append(parts, topic)
	}
	kws := keywords.Broad(strings.Join(parts, " "), o.cfg.KeywordLimit)

	res := o.hints.Resolve(ctx, kws, req.TopicName(), o.searcher.ListRepos())
	slog.InfoContext(ctx, "resolved service hints",
		"repos", res.Repos,
		"runbook", res.Runbook,
		"keywords", kws)

	searchTerms := kws
	if len(searchTerms) == 0 {
		searchTerms = []string{fallbackKeyword}
	}

	var findings []model.ToolResult
	for _, repo := range res.Repos {
		dirs := res.Directories[repo]
		if len(dirs) == 0 {
			dirs = o.dynamicDirectories(ctx, repo, kws)
		}
		slog.DebugContext(ctx, "using directories", "repo", repo, "directories", dirs)

		for _, kw := range searchTerms {
			matches := o.searcher.SearchCode(ctx, repo, kw, evidenceSearchLimit, dirs)
			slog.DebugContext(ctx, "search results", "repo", repo, "keyword", kw, "count", len(matches))
			for _, m := range matches {
				if len(dirs) > 0 && !hasAnyPrefix(m.Path, dirs) {
					continue
				}
				snippet, ok := o.searcher.ReadFile(ctx, repo, m.Path, m.Line-evidenceWindow, m.Line+evidenceWindow)
				if !ok || snippet == "" {
					snippet = m.Preview
				}
				findings = append(findings, model.ToolResult{
					Description: fmt.Sprintf("%s:%s:%d", repo, m.Path, m.Line),
					Content:     strings.TrimSpace(snippet),
				})
			}
		}

		if o.cfg.IncludeCommits {
			for _, c := range o.searcher.RecentCommits(ctx, repo, commitsPerRepo) {
				findings = append(findings, model.ToolResult{
					Description: fmt.Sprintf("%s recent commit %s", repo, c.SHA),
					Content:     fmt.Sprintf("%s %s: %s", c.Date, c.Author, c.Message),
				})
			}
		}
	}

	if res.Runbook != "" {
		findings = append(findings, model.ToolResult{
			Description: "Runbook hint",
			Content:     "Consult runbook: " + res.Runbook,
		})
	}

	if len(findings) == 0 {
		slog.InfoContext(ctx, "no tool results gathered")
	} else {
		slog.InfoContext(ctx, "gathered tool results", "count", len(findings), "sample", describe(findings, 5))
	}
	return findings
}

// dynamicDirectories buckets search hits by their first two path segments
// and returns the most frequent buckets, ties in first-seen order.
func (o *Orchestrator) dynamicDirectories(ctx context.Context, repo string, kws []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, kw := range kws {
		for _, m := range o.searcher.SearchCode(ctx, repo, kw, dynamicSearchLimit, nil) {
			dir := directoryOf(m.Path)
			if dir == "" {
				continue
			}
			if _, seen := counts[dir]; !seen {
				order = append(order, dir)
			}
			counts[dir]++
		}
	}

	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	if len(ranked) > maxDynamicDirs {
		ranked = ranked[:maxDynamicDirs]
	}
	return ranked
}

func directoryOf(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 1 {
		return strings.Join(parts[:2], "/")
	}
	return parts[0]
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func describe(results []model.ToolResult, n int) []string {
	out := make([]string, 0, min(n, len(results)))
	for _, r := range results[:min(n, len(results))] {
		out = append(out, r.Description)
	}
	return out
}
