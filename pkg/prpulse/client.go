// Package prpulse surveys the open pull requests of a GitHub repository,
// classifies how close each one is to merge-readiness, and publishes a
// deterministic report document. Every run is a fresh survey: there is no
// cache and no state carried between invocations.
package prpulse

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// HTTP client configuration constants.
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeoutSec  = 90
)

// Client fetches open pull requests and their reviews from GitHub.
// Reads are sequential; pagination is followed one page at a time.
type Client struct {
	github interface {
		get(ctx context.Context, path string, v any) (*githubResponse, error)
	}
	logger *slog.Logger
	token  string // Store token for recreating client with new transport
	api    string
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		// Wrap the transport with retry logic if not already wrapped
		if httpClient.Transport == nil {
			httpClient.Transport = &RetryTransport{Base: http.DefaultTransport}
		} else if _, ok := httpClient.Transport.(*RetryTransport); !ok {
			httpClient.Transport = &RetryTransport{Base: httpClient.Transport}
		}
		c.github = &githubClient{client: httpClient, token: c.token, api: c.api}
	}
}

// WithBaseURL points the client at a different API endpoint, such as a
// GitHub Enterprise Server instance.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.api = strings.TrimSuffix(baseURL, "/")
		if gc, ok := c.github.(*githubClient); ok {
			gc.api = c.api
		}
	}
}

// NewClient creates a new Client with the given GitHub token.
// If token is empty, WithHTTPClient option must be provided.
func NewClient(token string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeoutSec * time.Second,
		DisableCompression:  false,
		DisableKeepAlives:   false,
	}
	c := &Client{
		logger: slog.Default(),
		token:  token,
		api:    githubAPI,
		github: &githubClient{
			client: &http.Client{
				Transport: &RetryTransport{Base: transport},
				Timeout:   30 * time.Second,
			},
			token: token,
			api:   githubAPI,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot surveys every open pull request of one repository: the PRs
// themselves, the submitted reviews for each, and when each was last
// commented on. Fetches run strictly sequentially so a failure aborts the
// survey before any downstream aggregation can see a partial PR set.
func (c *Client) Snapshot(ctx context.Context, owner, repo string) (*Snapshot, error) {
	c.logger.InfoContext(ctx, "surveying open pull requests", "owner", owner, "repo", repo)

	prs, err := c.openPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Owner:        owner,
		Repo:         repo,
		PullRequests: prs,
		Reviews:      make(map[int][]Review, len(prs)),
	}

	for i := range prs {
		pr := &snapshot.PullRequests[i]

		reviews, err := c.reviews(ctx, owner, repo, pr.Number)
		if err != nil {
			return nil, err
		}
		snapshot.Reviews[pr.Number] = reviews
		pr.Reviewers = reviewerNames(pr.Reviewers, reviews)

		lastComment, err := c.lastCommentAt(ctx, owner, repo, pr.Number)
		if err != nil {
			return nil, err
		}
		pr.LastCommentAt = lastComment
	}

	c.logger.InfoContext(ctx, "survey complete",
		"owner", owner, "repo", repo, "open_prs", len(snapshot.PullRequests))
	return snapshot, nil
}
