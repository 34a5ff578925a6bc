// Package sourcegraph queries a Sourcegraph instance's GraphQL search API for
// line matches inside a single repository.
package sourcegraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"basegraph.app/triage/core/config"
	"basegraph.app/triage/internal/model"
)

const searchTimeout = 15 * time.Second

const searchQuery = `query Search($query: String!) {
  search(query: $query, version: V3) {
    results {
      matchCount
      results {
        __typename
        ... on FileMatch {
          repository { name }
          file { path }
          lineMatches {
            lineNumber
            offsetAndLengths
            line
          }
        }
      }
    }
  }
}`

type Client struct {
	url   string
	token string
	http  *http.Client
}

func New(cfg config.SourcegraphConfig) *Client {
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = searchTimeout
	return &Client{
		url:   strings.TrimRight(cfg.URL, "/"),
		token: cfg.Token,
		http:  httpClient,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.url != "" && c.token != ""
}

// Search finds up to limit lines containing keyword in repo, optionally
// restricted to the given directory prefixes.
func (c *Client) Search(ctx context.Context, repo, keyword string, directories []string, limit int) ([]model.RepoMatch, error) {
	if !c.Enabled() || keyword == "" {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"query":     searchQuery,
		"variables": map[string]string{"query": BuildQuery(repo, keyword, directories, limit)},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/.api/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sourcegraph search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("sourcegraph search: status %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload searchResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	var matches []model.RepoMatch
	for _, result := range payload.Data.Search.Results.Results {
		if result.Typename != "FileMatch" {
			continue
		}
		for _, lm := range result.LineMatches {
			matches = append(matches, model.RepoMatch{
				Path:    result.File.Path,
				Line:    lm.LineNumber,
				Preview: strings.TrimSpace(lm.Line),
			})
			if len(matches) >= limit {
				return matches, nil
			}
		}
	}
	return matches, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// BuildQuery renders the search string, e.g.
// `repo:^api$ "timeout" count:2 (file:^app/models/ OR file:^lib/)`.
func BuildQuery(repo, keyword string, directories []string, limit int) string {
	query := fmt.Sprintf(`repo:^%s$ "%s" count:%d`, regexp.QuoteMeta(repo), quoteEscaper.Replace(keyword), limit)
	if len(directories) == 0 {
		return query
	}

	filters := make([]string, 0, len(directories))
	for _, dir := range directories {
		filters = append(filters, "file:^"+regexp.QuoteMeta(strings.TrimRight(dir, "/"))+"/")
	}
	return query + " (" + strings.Join(filters, " OR ") + ")"
}

type searchResponse struct {
	Data struct {
		Search struct {
			Results struct {
				MatchCount int         `json:"matchCount"`
				Results    []fileMatch `json:"results"`
			} `json:"results"`
		} `json:"search"`
	} `json:"data"`
}

type fileMatch struct {
	Typename   string `json:"__typename"`
	Repository struct {
		Name string `json:"name"`
	} `json:"repository"`
	File struct {
		Path string `json:"path"`
	} `json:"file"`
	LineMatches []struct {
		LineNumber int    `json:"lineNumber"`
		Line       string `json:"line"`
	} `json:"lineMatches"`
}
