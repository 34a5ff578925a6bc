package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/triage/internal/keywords"
	"basegraph.app/triage/internal/model"
	"basegraph.app/triage/internal/repo"
)

const (
	analyzerMatchTarget = 3
	previewChars        = 160
)

const noReposMessage = "I could not locate the local repos; please ensure they exist next to this project."

type repoFinding struct {
	repo    string
	matches []model.RepoMatch
	note    string
}

// Analyzer is the deterministic last tier: a few narrow keywords searched
// directly (uncached) in each local repository.
type Analyzer struct {
	repos []repo.Repo
}

func NewAnalyzer(repos []repo.Repo) *Analyzer {
	return &Analyzer{repos: repos}
}

func (a *Analyzer) Analyze(ctx context.Context, text string) string {
	ctx = withComponent(ctx, "triage.brain.analyzer")
	kws := keywords.Narrow(text, keywords.DefaultNarrowLimit)
	if len(a.repos) == 0 {
		return noReposMessage
	}

	findings := make([]repoFinding, 0, len(a.repos))
	for _, r := range a.repos {
		f := repoFinding{repo: r.Name()}
		for _, kw := range kws {
			matches, err := r.Search(ctx, kw, 1)
			if err != nil {
				slog.WarnContext(ctx, "analyzer search failed", "repo", r.Name(), "keyword", kw, "error", err)
			}
			f.matches = append(f.matches, matches...)
			if len(f.matches) >= analyzerMatchTarget {
				break
			}
		}
		if len(f.matches) == 0 {
			f.note = latestCommitNote(ctx, r)
		}
		findings = append(findings, f)
	}

	lines := []string{"Automated triage check"}
	if len(kws) > 0 {
		lines = append(lines, "Keywords noticed: "+strings.Join(kws, ", "))
	} else {
		lines = append(lines, "Keywords: (none detected)")
	}
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("* Repo `%s`", f.repo))
		for _, m := range f.matches {
			lines = append(lines, fmt.Sprintf("  - %s:%d — %s", m.Path, m.Line, clip(m.Preview, previewChars)))
		}
		if f.note != "" {
			lines = append(lines, "  - "+f.note)
		}
	}
	lines = append(lines, "", "_reply with `next steps` for additional guidance_")
	return strings.Join(lines, "\n")
}

func latestCommitNote(ctx context.Context, r repo.Repo) string {
	commits, err := r.RecentCommits(ctx, 1)
	if err != nil {
		slog.WarnContext(ctx, "analyzer could not read commits", "repo", r.Name(), "error", err)
	}
	if len(commits) == 0 {
		return "no matches and unable to read recent commits"
	}
	c := commits[0]
	return fmt.Sprintf("latest commit %s by %s on %s: %s", c.SHA, c.Author, c.Date, c.Message)
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
