package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

var ErrMissingCredentials = errors.New("zulip credentials not found: set ZULIP_* env vars or add a .zuliprc file")

type Config struct {
	OTel        OTelConfig
	Zulip       ZulipConfig
	Triage      TriageConfig
	LLM         LLMConfig
	Codex       CodexConfig
	Sourcegraph SourcegraphConfig
	Repos       RepoConfig
	Env         string
	Port        string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
	// SampleRatio is the share of root triage spans kept, in [0, 1].
	SampleRatio float64
}

type ZulipConfig struct {
	Site          string
	Email         string
	APIKey        string
	DefaultStream string
	DefaultTopic  string
	BotAliases    []string
}

type TriageConfig struct {
	Workers          int
	QueueSize        int
	IncludeCommits   bool
	KeywordLimit     int
	ThreadFetchLimit int
	SearchCacheSize  int // 0 = unbounded (process lifetime)
	NodeID           int64
}

type LLMConfig struct {
	Provider   string // "codex" or "openai"
	Model      string
	APIKey     string
	BaseURL    string
	TimeoutSec int
	MaxTokens  int
}

type CodexConfig struct {
	CLIPath  string
	NodePath string
	APIKey   string
}

type SourcegraphConfig struct {
	URL   string
	Token string
}

type RepoConfig struct {
	BaseDir string
	// Names maps repository name to its checkout path, in registration order.
	Names []string
	Paths map[string]string
}

const (
	ProviderCodex  = "codex"
	ProviderOpenAI = "openai"
)

// Load builds the process configuration from the environment.
// In development a local .env file is loaded first. Chat credentials come from
// ZULIP_SITE/ZULIP_EMAIL/ZULIP_API_KEY, falling back to the [api] section of a
// classic .zuliprc file (ZULIPRC_PATH).
func Load() (Config, error) {
	if getEnv("TRIAGE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	zulipCfg, err := loadZulip()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:   getEnv("TRIAGE_ENV", "development"),
		Port:  getEnv("PORT", "8000"),
		Zulip: zulipCfg,
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "triage-bot"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("TRIAGE_ENV", "development"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
		Triage: TriageConfig{
			Workers:          getEnvInt("TRIAGE_WORKERS", 2),
			QueueSize:        getEnvInt("TRIAGE_QUEUE_SIZE", 64),
			IncludeCommits:   strings.EqualFold(getEnv("TRIAGE_INCLUDE_COMMITS", "false"), "true"),
			KeywordLimit:     getEnvInt("TRIAGE_KEYWORD_LIMIT", 12),
			ThreadFetchLimit: getEnvInt("TRIAGE_THREAD_FETCH_LIMIT", 25),
			SearchCacheSize:  getEnvInt("TRIAGE_SEARCH_CACHE_SIZE", 0),
			NodeID:           int64(getEnvInt("TRIAGE_NODE_ID", 1)),
		},
		LLM: LLMConfig{
			Provider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderCodex)),
			Model:      getEnv("LLM_MODEL", ""),
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			TimeoutSec: getEnvInt("LLM_TIMEOUT_SECONDS", 180),
			MaxTokens:  getEnvInt("LLM_MAX_TOKENS", 4096),
		},
		Codex: CodexConfig{
			CLIPath:  getEnv("CODEX_CLI_PATH", "codex"),
			NodePath: getEnv("NODE_CLI_PATH", "node"),
			APIKey:   getEnv("CODEX_API_KEY", ""),
		},
		Sourcegraph: SourcegraphConfig{
			URL:   strings.TrimRight(getEnv("SOURCEGRAPH_URL", ""), "/"),
			Token: getEnv("SOURCEGRAPH_TOKEN", ""),
		},
		Repos: loadRepos(getEnv("TRIAGE_REPO_BASE", "."), getEnv("TRIAGE_REPOS", "adwyze,adwyze-frontend")),
	}

	if cfg.Triage.Workers < 1 {
		return Config{}, fmt.Errorf("TRIAGE_WORKERS must be at least 1, got %d", cfg.Triage.Workers)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c SourcegraphConfig) Enabled() bool {
	return c.URL != "" && c.Token != ""
}

func (c LLMConfig) Timeout() int {
	if c.TimeoutSec <= 0 {
		return 180
	}
	return c.TimeoutSec
}

func loadZulip() (ZulipConfig, error) {
	cfg := ZulipConfig{
		DefaultStream: getEnv("TRIAGE_DEFAULT_STREAM", ""),
		DefaultTopic:  getEnv("TRIAGE_DEFAULT_TOPIC", ""),
		BotAliases:    splitList(getEnv("TRIAGE_BOT_ALIASES", "")),
	}

	site, email, key := os.Getenv("ZULIP_SITE"), os.Getenv("ZULIP_EMAIL"), os.Getenv("ZULIP_API_KEY")
	if site != "" && email != "" && key != "" {
		cfg.Site, cfg.Email, cfg.APIKey = site, email, key
		return cfg, nil
	}

	rcPath := getEnv("ZULIPRC_PATH", ".zuliprc")
	rc, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, rcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ZulipConfig{}, ErrMissingCredentials
		}
		return ZulipConfig{}, fmt.Errorf("reading %s: %w", rcPath, err)
	}

	section, err := rc.GetSection("api")
	if err != nil {
		return ZulipConfig{}, fmt.Errorf("%s missing [api] section", rcPath)
	}
	cfg.Site = section.Key("site").String()
	cfg.Email = section.Key("email").String()
	cfg.APIKey = section.Key("key").String()
	if cfg.Site == "" || cfg.Email == "" || cfg.APIKey == "" {
		return ZulipConfig{}, fmt.Errorf("%s [api] needs site, email and key: %w", rcPath, ErrMissingCredentials)
	}
	return cfg, nil
}

// loadRepos resolves TRIAGE_REPOS entries. Each entry is either a bare name
// (checked out under base) or name=path.
func loadRepos(base, entries string) RepoConfig {
	cfg := RepoConfig{BaseDir: base, Paths: make(map[string]string)}
	for _, entry := range splitList(entries) {
		name, path, found := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !found || strings.TrimSpace(path) == "" {
			path = filepath.Join(base, name)
		}
		if _, dup := cfg.Paths[name]; !dup {
			cfg.Names = append(cfg.Names, name)
		}
		cfg.Paths[name] = strings.TrimSpace(path)
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}
