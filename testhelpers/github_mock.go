package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockIssue is an issue served by the mock GitHub server
type MockIssue struct {
	Number      int
	Title       string
	State       string
	Labels      []string
	PullRequest bool
}

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	Owner  string
	Repo   string
	Issues []MockIssue
	// PerPage caps the page size regardless of the request, to exercise pagination
	PerPage int
	// Fail makes every request answer 500
	Fail bool

	mu            sync.Mutex
	Requests      []string
	Authorization []string
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner: "elastic",
		Repo:  PluginArtifactID,
	}
}

// NewMockGitHubServer creates an httptest server that mocks the repository issues endpoint
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	issuesPath := "/repos/" + config.Owner + "/" + config.Repo + "/issues"

	mux.HandleFunc(issuesPath, func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		config.Requests = append(config.Requests, r.URL.RawQuery)
		config.Authorization = append(config.Authorization, r.Header.Get("Authorization"))
		config.mu.Unlock()

		if config.Fail {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		query := r.URL.Query()
		state := query.Get("state")
		var labels []string
		if l := query.Get("labels"); l != "" {
			labels = strings.Split(l, ",")
		}

		var matched []*github.Issue
		for _, issue := range config.Issues {
			if state != "" && state != "all" && issue.State != state {
				continue
			}
			if !hasAllLabels(issue.Labels, labels) {
				continue
			}
			matched = append(matched, toGitHubIssue(config, issue))
		}

		perPage, _ := strconv.Atoi(query.Get("per_page"))
		if config.PerPage > 0 && (perPage == 0 || perPage > config.PerPage) {
			perPage = config.PerPage
		}
		if perPage <= 0 {
			perPage = 30
		}
		page, _ := strconv.Atoi(query.Get("page"))
		if page <= 0 {
			page = 1
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(matched) {
			start = len(matched)
		}
		if end > len(matched) {
			end = len(matched)
		}
		if end < len(matched) {
			next := r.URL.Query()
			next.Set("page", strconv.Itoa(page+1))
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?%s>; rel="next"`, r.Host, issuesPath, next.Encode()))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(matched[start:end])
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { server.Close() })
	return server
}

// RequestCount returns the number of requests served so far
func (c *MockGitHubServerConfig) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Requests)
}

func toGitHubIssue(config *MockGitHubServerConfig, issue MockIssue) *github.Issue {
	out := &github.Issue{
		Number:  github.Int(issue.Number),
		Title:   github.String(issue.Title),
		State:   github.String(issue.State),
		HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/%s/issues/%d", config.Owner, config.Repo, issue.Number)),
	}
	for _, l := range issue.Labels {
		out.Labels = append(out.Labels, &github.Label{Name: github.String(l)})
	}
	if issue.PullRequest {
		out.PullRequestLinks = &github.PullRequestLinks{URL: github.String("https://api.github.com/pulls/1")}
	}
	return out
}

func hasAllLabels(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
