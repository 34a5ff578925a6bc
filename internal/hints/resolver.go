package hints

import (
	"context"
	"log/slog"
)

// Resolution is the set of repositories to search, with optional static
// directory restrictions and a runbook pointer.
type Resolution struct {
	Repos       []string
	Directories map[string][]string
	Runbook     string
}

type Resolver struct {
	registry *Registry
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve selects every registered repository with no directory restriction
// and no runbook. The topic index is deliberately not consulted here;
// directories are narrowed later from search hits.
func (r *Resolver) Resolve(ctx context.Context, keywords []string, topic string, repos []string) Resolution {
	res := Resolution{
		Repos:       append([]string(nil), repos...),
		Directories: make(map[string][]string, len(repos)),
	}
	for _, repo := range repos {
		res.Directories[repo] = nil
	}

	if r.registry != nil {
		if hint, ok := r.registry.Lookup(topic); ok {
			slog.DebugContext(ctx, "topic matches a service hint; not applied",
				"topic", topic,
				"hint", hint.Name)
		}
	}

	return res
}
