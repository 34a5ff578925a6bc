package repo_test

import (
	"context"
	"errors"
	"sync"

	"basegraph.app/triage/internal/model"
	"basegraph.app/triage/internal/runner"
)

type mockRunner struct {
	runFn func(ctx context.Context, cmd runner.Command) (runner.Result, error)

	mu    sync.Mutex
	calls []runner.Command
}

func (m *mockRunner) Run(ctx context.Context, cmd runner.Command) (runner.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()
	if m.runFn != nil {
		return m.runFn(ctx, cmd)
	}
	return runner.Result{}, nil
}

func (m *mockRunner) LookPath(name string) (string, error) {
	if name == "rg" {
		return "/usr/bin/rg", nil
	}
	return "", errors.New("not found")
}

type mockRepo struct {
	name     string
	searchFn func(ctx context.Context, keyword string, limit int) ([]model.RepoMatch, error)
	commitFn func(ctx context.Context, limit int) ([]model.RepoCommit, error)
	readFn   func(path string, start, end int) (string, bool)

	mu       sync.Mutex
	searches int
}

func (m *mockRepo) Name() string { return m.name }

func (m *mockRepo) Search(ctx context.Context, keyword string, limit int) ([]model.RepoMatch, error) {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, keyword, limit)
	}
	return nil, nil
}

func (m *mockRepo) RecentCommits(ctx context.Context, limit int) ([]model.RepoCommit, error) {
	if m.commitFn != nil {
		return m.commitFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepo) ReadFile(path string, start, end int) (string, bool) {
	if m.readFn != nil {
		return m.readFn(path, start, end)
	}
	return "", false
}

func (m *mockRepo) searchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches
}

type mockRemote struct {
	enabled  bool
	searchFn func(ctx context.Context, repo, keyword string, directories []string, limit int) ([]model.RepoMatch, error)
	calls    int
}

func (m *mockRemote) Enabled() bool { return m.enabled }

func (m *mockRemote) Search(ctx context.Context, repo, keyword string, directories []string, limit int) ([]model.RepoMatch, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, repo, keyword, directories, limit)
	}
	return nil, nil
}
