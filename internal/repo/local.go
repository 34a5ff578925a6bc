package repo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"basegraph.app/triage/internal/model"
	"basegraph.app/triage/internal/runner"
)

// Repo is one searchable source tree.
type Repo interface {
	Name() string
	Search(ctx context.Context, keyword string, limit int) ([]model.RepoMatch, error)
	RecentCommits(ctx context.Context, limit int) ([]model.RepoCommit, error)
	ReadFile(path string, start, end int) (string, bool)
}

// LocalRepo searches a checkout on disk with ripgrep and reads history with git.
type LocalRepo struct {
	name   string
	root   string
	runner runner.CommandRunner
	rg     string
}

func NewLocalRepo(name, path string, r runner.CommandRunner) *LocalRepo {
	root, err := filepath.Abs(path)
	if err != nil {
		root = path
	}
	l := &LocalRepo{name: name, root: root, runner: r}
	if rg, err := r.LookPath("rg"); err == nil {
		l.rg = rg
	}
	return l
}

func (l *LocalRepo) Name() string { return l.name }

func (l *LocalRepo) Root() string { return l.root }

func (l *LocalRepo) Exists() bool {
	_, err := os.Stat(l.root)
	return err == nil
}

func (l *LocalRepo) Search(ctx context.Context, keyword string, limit int) ([]model.RepoMatch, error) {
	if keyword == "" || !l.Exists() {
		return nil, nil
	}
	if l.rg == "" {
		slog.WarnContext(ctx, "ripgrep not available; skipping code search", "repo", l.name)
		return nil, nil
	}

	res, err := l.runner.Run(ctx, runner.Command{
		Name: l.rg,
		Args: []string{
			"--no-heading",
			"--line-number",
			"--ignore-case",
			"-m", strconv.Itoa(limit),
			"-e", keyword,
			l.root,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rg in %s: %w", l.name, err)
	}
	switch res.ExitCode {
	case 0:
	case 1: // no matches
		return nil, nil
	default:
		return nil, fmt.Errorf("rg in %s exited %d: %s", l.name, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	// rg -m caps matches per file, so the total is capped here.
	var matches []model.RepoMatch
	scanner := bufio.NewScanner(bytes.NewReader(res.Stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if limit > 0 && len(matches) >= limit {
			break
		}
		parts := strings.SplitN(scanner.Text(), ":", 3)
		if len(parts) < 3 {
			continue
		}
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			line = 0
		}
		matches = append(matches, model.RepoMatch{
			Path:    l.relative(parts[0]),
			Line:    line,
			Preview: strings.TrimSpace(parts[2]),
		})
	}
	return matches, nil
}

func (l *LocalRepo) RecentCommits(ctx context.Context, limit int) ([]model.RepoCommit, error) {
	if !l.Exists() {
		return nil, nil
	}

	res, err := l.runner.Run(ctx, runner.Command{
		Name: "git",
		Args: []string{
			"-C", l.root,
			"log",
			fmt.Sprintf("-n%d", limit),
			"--pretty=format:%h%x09%an%x09%ad%x09%s",
			"--date=short",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("git log in %s: %w", l.name, err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("git log in %s exited %d: %s", l.name, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	var commits []model.RepoCommit
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, model.RepoCommit{
			SHA:     parts[0],
			Author:  parts[1],
			Date:    parts[2],
			Message: parts[3],
		})
	}
	return commits, nil
}

// ReadFile returns lines start..end (1-based, inclusive) with their line
// endings. Missing files, and paths outside the repository, report false.
func (l *LocalRepo) ReadFile(path string, start, end int) (string, bool) {
	full := filepath.Join(l.root, path)
	if rel, err := filepath.Rel(l.root, full); err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read file", "repo", l.name, "path", path, "error", err)
		}
		return "", false
	}

	start = max(1, start)
	end = max(start, end)

	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if start > len(lines) {
		return "", true
	}
	return strings.Join(lines[start-1:min(end, len(lines))], ""), true
}

func (l *LocalRepo) relative(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(l.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}
	return filepath.ToSlash(rel)
}
