package repo

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/singleflight"

	"basegraph.app/triage/internal/model"
)

// RemoteSearcher is a hosted code search service tried before local search.
type RemoteSearcher interface {
	Enabled() bool
	Search(ctx context.Context, repo, keyword string, directories []string, limit int) ([]model.RepoMatch, error)
}

// Registry is the tool facade used by evidence gathering: named repositories,
// remote-then-local search and a per-(repo, keyword) result cache.
type Registry struct {
	repos  map[string]Repo
	order  []string
	remote RemoteSearcher
	cache  searchCache
	flight singleflight.Group
}

type Option func(*Registry)

func WithRemote(remote RemoteSearcher) Option {
	return func(r *Registry) { r.remote = remote }
}

// WithCacheSize bounds the search cache to n entries (LRU). Zero keeps every
// result for the life of the process.
func WithCacheSize(n int) Option {
	return func(r *Registry) { r.cache = newSearchCache(n) }
}

func NewRegistry(repos []Repo, opts ...Option) *Registry {
	r := &Registry{
		repos: make(map[string]Repo, len(repos)),
		cache: newSearchCache(0),
	}
	for _, repo := range repos {
		if _, dup := r.repos[repo.Name()]; dup {
			continue
		}
		r.repos[repo.Name()] = repo
		r.order = append(r.order, repo.Name())
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) ListRepos() []string {
	return append([]string(nil), r.order...)
}

// Repos returns the registered repositories in registration order.
func (r *Registry) Repos() []Repo {
	out := make([]Repo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.repos[name])
	}
	return out
}

func (r *Registry) repo(ctx context.Context, name string) (Repo, bool) {
	repo, ok := r.repos[name]
	if !ok {
		slog.WarnContext(ctx, "requested repo not found in registry", "repo", name)
	}
	return repo, ok
}

// SearchCode returns up to limit matches for keyword in the named repo.
// The first lookup of a (repo, keyword) pair decides what is cached: remote
// search results when there are any, otherwise local ones. Later lookups
// are served from the cache, truncated to their own limit. Backend failures
// count as no matches.
func (r *Registry) SearchCode(ctx context.Context, repoName, keyword string, limit int, directories []string) []model.RepoMatch {
	repo, ok := r.repo(ctx, repoName)
	if !ok {
		return nil
	}

	key := searchKey{repo: repoName, keyword: keyword}
	if cached, ok := r.cache.get(key); ok {
		return truncate(cached, limit)
	}

	v, _, _ := r.flight.Do(repoName+"\x00"+keyword, func() (any, error) {
		if cached, ok := r.cache.get(key); ok {
			return cached, nil
		}
		matches := r.search(ctx, repo, keyword, limit, directories)
		r.cache.put(key, matches)
		return matches, nil
	})

	matches, _ := v.([]model.RepoMatch)
	return truncate(slices.Clone(matches), limit)
}

func (r *Registry) search(ctx context.Context, repo Repo, keyword string, limit int, directories []string) []model.RepoMatch {
	var matches []model.RepoMatch
	if r.remote != nil && r.remote.Enabled() {
		remote, err := r.remote.Search(ctx, repo.Name(), keyword, directories, limit)
		if err != nil {
			slog.WarnContext(ctx, "remote search failed", "repo", repo.Name(), "keyword", keyword, "error", err)
		}
		matches = remote
		slog.DebugContext(ctx, "remote search", "repo", repo.Name(), "keyword", keyword, "count", len(remote))
	}

	if len(matches) == 0 {
		local, err := repo.Search(ctx, keyword, limit)
		if err != nil {
			slog.WarnContext(ctx, "local search failed", "repo", repo.Name(), "keyword", keyword, "error", err)
		}
		matches = local
		slog.DebugContext(ctx, "local search", "repo", repo.Name(), "keyword", keyword, "count", len(local))
	}
	return matches
}

func (r *Registry) ReadFile(ctx context.Context, repoName, path string, start, end int) (string, bool) {
	repo, ok := r.repo(ctx, repoName)
	if !ok {
		return "", false
	}
	return repo.ReadFile(path, start, end)
}

func (r *Registry) RecentCommits(ctx context.Context, repoName string, limit int) []model.RepoCommit {
	repo, ok := r.repo(ctx, repoName)
	if !ok {
		return nil
	}
	commits, err := repo.RecentCommits(ctx, limit)
	if err != nil {
		slog.WarnContext(ctx, "failed to read commits", "repo", repoName, "error", err)
		return nil
	}
	return commits
}

func truncate(matches []model.RepoMatch, limit int) []model.RepoMatch {
	if limit >= 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
