// Package issues queries the GitHub issue tracker of the project being released.
package issues

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	relerrors "releasekit.dev/releasekit/internal/errors"
)

// DefaultOwner is the GitHub organisation owning plugin repositories
const DefaultOwner = "elastic"

// Issue is the part of a GitHub issue the release needs
type Issue struct {
	Number int
	Title  string
	URL    string
}

// Options configures a Client
type Options struct {
	Owner string
	Repo  string

	// Login and Password enable basic authentication, Token enables token
	// authentication. Without either the client is anonymous and rate limited.
	Login    string
	Password string
	Token    string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests)
	BaseURL string
	// WebURL is used to build links shown to the operator
	WebURL string
}

// OptionsFromEnv reads credentials from GITHUB_LOGIN/GITHUB_PASSWORD or GITHUB_KEY (GITHUB_TOKEN)
func OptionsFromEnv(owner, repo string) Options {
	token := os.Getenv("GITHUB_KEY")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	return Options{
		Owner:    owner,
		Repo:     repo,
		Login:    os.Getenv("GITHUB_LOGIN"),
		Password: os.Getenv("GITHUB_PASSWORD"),
		Token:    token,
	}
}

// Client lists issues of a single repository
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	webURL string
}

// NewClient creates a Client for opts.Owner/opts.Repo
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Repo == "" {
		return nil, fmt.Errorf("github repository name is required")
	}
	if opts.Owner == "" {
		opts.Owner = DefaultOwner
	}

	var httpClient *http.Client
	switch {
	case opts.Login != "":
		transport := &github.BasicAuthTransport{Username: opts.Login, Password: opts.Password}
		httpClient = transport.Client()
	case opts.Token != "":
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github url %q: %w", opts.BaseURL, err)
		}
		gh.BaseURL = u
	}

	webURL := opts.WebURL
	if webURL == "" {
		webURL = "https://github.com/"
	}
	if !strings.HasSuffix(webURL, "/") {
		webURL += "/"
	}

	return &Client{
		gh:     gh,
		owner:  opts.Owner,
		repo:   opts.Repo,
		webURL: webURL,
	}, nil
}

// OpenIssuesURL is the web page listing open issues labelled version
func (c *Client) OpenIssuesURL(version string) string {
	return fmt.Sprintf("%s%s/%s/issues?labels=%s&state=open", c.webURL, c.owner, c.repo, version)
}

// CheckOpenedIssues fails with an UnresolvedIssuesError when issues labelled version are still open
func (c *Client) CheckOpenedIssues(ctx context.Context, version string) error {
	open, err := c.list(ctx, "open", version)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return relerrors.NewUnresolvedIssuesError(version, len(open), c.OpenIssuesURL(version))
	}
	return nil
}

// ListIssues lists closed issues labelled with both severity and version
func (c *Client) ListIssues(ctx context.Context, version, severity string) ([]Issue, error) {
	return c.list(ctx, "closed", severity, version)
}

// Categorized lists the closed issues of version for every announcement category
func (c *Client) Categorized(ctx context.Context, version string) (Categorized, error) {
	result := make(Categorized, 0, len(Categories))
	for _, category := range Categories {
		found, err := c.ListIssues(ctx, version, category.Label)
		if err != nil {
			return nil, err
		}
		result = append(result, Bucket{Category: category, Issues: found})
	}
	return result, nil
}

func (c *Client) list(ctx context.Context, state string, labels ...string) ([]Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      labels,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var result []Issue
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s issues labelled %s: %w", state, strings.Join(labels, ","), err)
		}

		for _, issue := range page {
			// The issues API also returns pull requests
			if issue.IsPullRequest() {
				continue
			}
			result = append(result, Issue{
				Number: issue.GetNumber(),
				Title:  issue.GetTitle(),
				URL:    issue.GetHTMLURL(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return result, nil
}
