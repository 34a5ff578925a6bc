package hints

import (
	"errors"
	"fmt"
	"slices"

	"basegraph.app/triage/internal/model"
)

var (
	ErrDuplicateHint  = errors.New("duplicate service hint")
	ErrInvalidHint    = errors.New("invalid service hint")
	ErrDuplicateToken = errors.New("topic token mapped to more than one hint")
)

// Registry is an immutable, validated set of service hints plus a
// topic-token index.
type Registry struct {
	hints   []model.ServiceHint
	byName  map[string]int
	byToken map[string]int
}

func NewRegistry(hints []model.ServiceHint) (*Registry, error) {
	r := &Registry{
		hints:   make([]model.ServiceHint, 0, len(hints)),
		byName:  make(map[string]int, len(hints)),
		byToken: make(map[string]int),
	}

	for _, h := range hints {
		if err := validate(h); err != nil {
			return nil, err
		}
		if _, dup := r.byName[h.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHint, h.Name)
		}
		idx := len(r.hints)
		for _, token := range h.TopicTokens {
			if prev, dup := r.byToken[token]; dup {
				return nil, fmt.Errorf("%w: %q (%s, %s)", ErrDuplicateToken, token, r.hints[prev].Name, h.Name)
			}
			r.byToken[token] = idx
		}
		r.byName[h.Name] = idx
		r.hints = append(r.hints, clone(h))
	}
	return r, nil
}

// MustDefault returns the built-in registry and panics if it fails validation.
func MustDefault() *Registry {
	r, err := NewRegistry(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in service hints: %v", err))
	}
	return r
}

func (r *Registry) All() []model.ServiceHint {
	out := make([]model.ServiceHint, len(r.hints))
	for i, h := range r.hints {
		out[i] = clone(h)
	}
	return out
}

func (r *Registry) Get(name string) (model.ServiceHint, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return model.ServiceHint{}, false
	}
	return clone(r.hints[idx]), true
}

// Lookup maps a stream or topic token (e.g. "google-ads") to its hint.
func (r *Registry) Lookup(token string) (model.ServiceHint, bool) {
	idx, ok := r.byToken[token]
	if !ok {
		return model.ServiceHint{}, false
	}
	return clone(r.hints[idx]), true
}

func validate(h model.ServiceHint) error {
	if h.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidHint)
	}
	if len(h.Repos) == 0 {
		return fmt.Errorf("%w: %s has no repositories", ErrInvalidHint, h.Name)
	}
	for repo := range h.Directories {
		if !slices.Contains(h.Repos, repo) {
			return fmt.Errorf("%w: %s lists directories for unknown repo %s", ErrInvalidHint, h.Name, repo)
		}
	}
	return nil
}

func clone(h model.ServiceHint) model.ServiceHint {
	out := h
	out.Repos = slices.Clone(h.Repos)
	out.Keywords = slices.Clone(h.Keywords)
	out.TopicTokens = slices.Clone(h.TopicTokens)
	if h.Directories != nil {
		out.Directories = make(map[string][]string, len(h.Directories))
		for repo, dirs := range h.Directories {
			out.Directories[repo] = slices.Clone(dirs)
		}
	}
	return out
}
