package brain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"basegraph.app/triage/core/config"
	"basegraph.app/triage/internal/model"
	"basegraph.app/triage/internal/runner"
)

// CodexAgent drives the Codex CLI (`codex exec`) as a subprocess. It is
// enabled only when node and codex resolve on PATH and the CLI is logged in.
type CodexAgent struct {
	runner   runner.CommandRunner
	cliPath  string
	nodePath string
	model    string
	enabled  bool
}

func NewCodexAgent(ctx context.Context, cfg config.CodexConfig, model string, r runner.CommandRunner) *CodexAgent {
	ctx = withComponent(ctx, "triage.brain.codex")
	a := &CodexAgent{runner: r, model: model}

	nodePath, err := r.LookPath(cfg.NodePath)
	if err != nil {
		slog.WarnContext(ctx, "node CLI not found on PATH; Codex CLI cannot run", "node", cfg.NodePath)
	}
	cliPath, err := r.LookPath(cfg.CLIPath)
	if err != nil {
		slog.WarnContext(ctx, "codex CLI not found on PATH; LLM triage disabled", "codex", cfg.CLIPath)
	}
	a.nodePath, a.cliPath = nodePath, cliPath

	if a.nodePath != "" && a.cliPath != "" {
		a.enabled = a.ensureLogin(ctx, cfg.APIKey)
	}
	slog.InfoContext(ctx, "codex agent initialized", "enabled", a.enabled, "model", model)
	return a
}

func (a *CodexAgent) Enabled() bool {
	return a.enabled
}

func (a *CodexAgent) ensureLogin(ctx context.Context, apiKey string) bool {
	if !a.check(ctx, runner.Command{Name: a.nodePath, Args: []string{"--version"}}, "node --version") {
		return false
	}
	if !a.check(ctx, runner.Command{Name: a.cliPath, Args: []string{"--version"}}, "codex --version") {
		return false
	}
	if a.loggedIn(ctx) {
		return true
	}
	if apiKey == "" {
		slog.WarnContext(ctx, "CODEX_API_KEY not set; cannot auto-login Codex CLI")
		return false
	}

	res, err := a.runner.Run(ctx, runner.Command{
		Name:  a.cliPath,
		Args:  []string{"login", "--with-api-key"},
		Stdin: []byte(apiKey + "\n"),
	})
	if err != nil {
		slog.ErrorContext(ctx, "codex login failed to start", "error", err)
		return false
	}
	if res.ExitCode != 0 {
		slog.ErrorContext(ctx, "codex login failed", "exit_code", res.ExitCode, "stderr", strings.TrimSpace(string(res.Stderr)))
		return false
	}
	return a.loggedIn(ctx)
}

func (a *CodexAgent) loggedIn(ctx context.Context) bool {
	res, err := a.runner.Run(ctx, runner.Command{Name: a.cliPath, Args: []string{"login", "status"}})
	if err != nil {
		slog.ErrorContext(ctx, "failed to check codex login status", "error", err)
		return false
	}
	if res.ExitCode != 0 {
		slog.WarnContext(ctx, "codex login status non-zero", "exit_code", res.ExitCode, "stderr", strings.TrimSpace(string(res.Stderr)))
		return false
	}
	slog.InfoContext(ctx, "codex CLI login verified")
	return true
}

func (a *CodexAgent) check(ctx context.Context, cmd runner.Command, label string) bool {
	res, err := a.runner.Run(ctx, cmd)
	if err != nil {
		slog.ErrorContext(ctx, "capability check failed to run", "check", label, "error", err)
		return false
	}
	if res.ExitCode != 0 {
		detail := firstNonEmpty(string(res.Stderr), string(res.Stdout))
		slog.ErrorContext(ctx, "capability check failed", "check", label, "exit_code", res.ExitCode, "detail", detail)
		return false
	}
	detail, _, _ := strings.Cut(firstNonEmpty(string(res.Stdout), string(res.Stderr)), "\n")
	slog.InfoContext(ctx, "capability check ok", "check", label, "detail", detail)
	return true
}

func (a *CodexAgent) Run(ctx context.Context, req model.TriageRequest, evidence []model.ToolResult) AgentOutcome {
	if !a.enabled {
		return AgentOutcome{Status: AgentUnavailable}
	}
	ctx = withComponent(ctx, "triage.brain.codex")

	out, err := os.CreateTemp("", "codex-last-message-*.txt")
	if err != nil {
		return failed(fmt.Errorf("creating output file: %w", err))
	}
	outPath := out.Name()
	_ = out.Close()
	defer os.Remove(outPath)

	prompt := BuildPrompt(req, evidence)
	args := []string{"exec", "--skip-git-repo-check", "--output-last-message", outPath, "--color", "never"}
	if a.model != "" {
		args = append(args, "--model", a.model)
	}
	args = append(args, prompt)

	slog.InfoContext(ctx, "invoking codex CLI", "prompt_chars", len(prompt))
	res, err := a.runner.Run(ctx, runner.Command{Name: a.cliPath, Args: args})
	if err != nil {
		return failed(fmt.Errorf("codex exec: %w", err))
	}
	if res.ExitCode != 0 {
		return failed(fmt.Errorf("codex exec exited %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr))))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return failed(fmt.Errorf("reading codex output: %w", err))
	}
	text := strings.TrimSpace(string(data))
	slog.DebugContext(ctx, "codex response", "chars", len(text))
	if text == "" {
		return failed(ErrEmptyAnswer)
	}
	return answered(text)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
