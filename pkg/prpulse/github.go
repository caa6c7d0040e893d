package prpulse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	githubAPI = "https://api.github.com"
	// maxResponseSize limits API response size to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024 // 10MB
	// maxErrorBodySize limits error response body reading for debugging.
	maxErrorBodySize = 1024
	// tokenPreviewPrefixLen is the number of characters to show at the start of a masked token.
	tokenPreviewPrefixLen = 4
	// tokenPreviewSuffixLen is the number of characters to show at the end of a masked token.
	tokenPreviewSuffixLen = 4
	// tokenPreviewMinLen is the minimum token length to show a preview.
	tokenPreviewMinLen = 8
)

// GitHubAPIError represents an error response from the GitHub API.
type GitHubAPIError struct {
	Status     string
	Body       string
	URL        string
	StatusCode int
}

func (e *GitHubAPIError) Error() string {
	return fmt.Sprintf("github API error: %s", e.Status)
}

// githubClient is a client for reading from the GitHub REST API.
type githubClient struct {
	client *http.Client
	token  string
	api    string
}

// maskToken returns a loggable preview of a credential.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) > tokenPreviewMinLen {
		return token[:tokenPreviewPrefixLen] + "..." + token[len(token)-tokenPreviewSuffixLen:]
	}
	return "***"
}

// doRequest performs the common HTTP request logic for GitHub API calls.
func (c *githubClient) doRequest(ctx context.Context, path string) ([]byte, *githubResponse, error) {
	apiURL := c.api + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	slog.DebugContext(ctx, "GitHub API request starting",
		"method", http.MethodGet,
		"url", apiURL,
		"authorization", "Bearer "+maskToken(c.token))

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "GitHub API request failed", "url", apiURL, "error", err, "elapsed", elapsed)
		return nil, nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.DebugContext(ctx, "failed to close response body", "error", closeErr, "url", apiURL)
		}
	}()

	slog.DebugContext(ctx, "GitHub API response received",
		"status", resp.Status,
		"url", apiURL,
		"elapsed", elapsed,
		"rate_limit_remaining", resp.Header.Get("X-Ratelimit-Remaining"))

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			body = []byte("failed to read response body")
		}
		slog.ErrorContext(ctx, "GitHub API error",
			"status", resp.Status,
			"url", apiURL,
			"body", string(body))
		return nil, nil, &GitHubAPIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
			URL:        apiURL,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, err
	}

	return data, &githubResponse{NextPage: nextPage(resp.Header.Get("Link"))}, nil
}

// nextPage extracts the rel="next" page number from a Link header.
// Zero means there are no further pages.
func nextPage(linkHeader string) int {
	for _, link := range strings.Split(linkHeader, ",") {
		parts := strings.Split(strings.TrimSpace(link), ";")
		if len(parts) != 2 || strings.TrimSpace(parts[1]) != `rel="next"` {
			continue
		}
		u, err := url.Parse(strings.Trim(parts[0], "<>"))
		if err != nil {
			return 0
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			return 0
		}
		return page
	}
	return 0
}

// get makes a GET request to the GitHub API and decodes the response into v.
func (c *githubClient) get(ctx context.Context, path string, v any) (*githubResponse, error) {
	data, resp, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}

	return resp, nil
}

// githubResponse wraps a GitHub API response.
type githubResponse struct {
	NextPage int
}

// githubUser represents a GitHub user.
type githubUser struct {
	Login string `json:"login"`
}

// githubTeam represents a GitHub team requested as a reviewer.
type githubTeam struct {
	Name string `json:"name"`
}

// githubPullRequest represents a GitHub pull request.
type githubPullRequest struct {
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	User               *githubUser   `json:"user"`
	Title              string        `json:"title"`
	HTMLURL            string        `json:"html_url"`
	RequestedReviewers []*githubUser `json:"requested_reviewers"`
	RequestedTeams     []githubTeam  `json:"requested_teams"`
	Number             int           `json:"number"`
	Draft              bool          `json:"draft"`
}

// githubReview represents a GitHub review.
type githubReview struct {
	SubmittedAt time.Time   `json:"submitted_at"`
	User        *githubUser `json:"user"`
	State       string      `json:"state"`
}

// githubComment represents a GitHub issue comment; only the update time is
// read, for last-activity reporting.
type githubComment struct {
	UpdatedAt time.Time `json:"updated_at"`
}
