package prpulse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// gistClient writes report documents to the GitHub gist API. It follows the
// same wire conventions as githubClient but is used for writes, so its
// transport must never retry a request.
type gistClient struct {
	client *http.Client
	token  string
	api    string
}

// do performs one write request against the gist API and decodes the
// response into v. Any status other than expectStatus is an error.
func (c *gistClient) do(ctx context.Context, method, path string, payload any, expectStatus int, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding gist payload: %w", err)
	}

	apiURL := c.api + path
	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	slog.DebugContext(ctx, "gist API request starting",
		"method", method,
		"url", apiURL,
		"authorization", "Bearer "+maskToken(c.token))

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "gist API request failed", "url", apiURL, "error", err, "elapsed", elapsed)
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.DebugContext(ctx, "failed to close response body", "error", closeErr, "url", apiURL)
		}
	}()

	slog.DebugContext(ctx, "gist API response received",
		"status", resp.Status,
		"url", apiURL,
		"elapsed", elapsed)

	if resp.StatusCode != expectStatus {
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			errBody = []byte("failed to read response body")
		}
		slog.ErrorContext(ctx, "gist API error",
			"status", resp.Status,
			"url", apiURL,
			"body", string(errBody))
		return &GitHubAPIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(errBody),
			URL:        apiURL,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// create makes a new gist and returns the sink-assigned identity.
func (c *gistClient) create(ctx context.Context, gist *githubGist) (*gistResult, error) {
	var result gistResult
	if err := c.do(ctx, http.MethodPost, "/gists", gist, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// update replaces the contents of an existing gist.
func (c *gistClient) update(ctx context.Context, id string, gist *githubGist) (*gistResult, error) {
	var result gistResult
	if err := c.do(ctx, http.MethodPatch, "/gists/"+id, gist, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// githubGist is the write payload for the gist API.
type githubGist struct {
	Description string              `json:"description"`
	Files       map[string]gistFile `json:"files"`
	Public      bool                `json:"public"`
}

// gistFile carries the full new content of one file; the API replaces the
// stored content wholesale, never merging.
type gistFile struct {
	Content string `json:"content"`
}

// gistResult is the subset of the gist API response worth reporting.
type gistResult struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
}
