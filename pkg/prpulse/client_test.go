//nolint:errcheck // Test handlers don't need to check w.Write errors
package prpulse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func snapshotTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/repos/acme/widgets/pulls":
			w.Write([]byte(`[
				{
					"number": 7,
					"title": "Improve error messages",
					"html_url": "https://github.com/acme/widgets/pull/7",
					"created_at": "2024-02-04T10:00:00Z",
					"updated_at": "2024-03-10T10:00:00Z",
					"user": {"login": "dev1"},
					"requested_reviewers": [{"login": "carol"}]
				},
				{
					"number": 8,
					"title": "Bump dependencies",
					"html_url": "https://github.com/acme/widgets/pull/8",
					"created_at": "2024-03-13T10:00:00Z",
					"updated_at": "2024-03-13T10:00:00Z",
					"user": {"login": "dev2"}
				}
			]`))
		case r.URL.Path == "/repos/acme/widgets/pulls/7/reviews":
			w.Write([]byte(`[
				{"user": {"login": "alice"}, "state": "APPROVED", "submitted_at": "2024-03-11T10:00:00Z"},
				{"user": {"login": "bob"}, "state": "CHANGES_REQUESTED", "submitted_at": "2024-03-12T10:00:00Z"}
			]`))
		case r.URL.Path == "/repos/acme/widgets/pulls/8/reviews":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/repos/acme/widgets/issues/7/comments":
			w.Write([]byte(`[{"updated_at": "2024-03-12T08:30:00Z"}]`))
		case r.URL.Path == "/repos/acme/widgets/issues/8/comments":
			w.Write([]byte(`[]`))
		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClientSnapshot(t *testing.T) {
	server := snapshotTestServer(t)
	defer server.Close()

	client := NewClient("test-token",
		WithHTTPClient(server.Client()),
		WithBaseURL(server.URL),
	)

	snapshot, err := client.Snapshot(context.Background(), "acme", "widgets")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if snapshot.Owner != "acme" || snapshot.Repo != "widgets" {
		t.Errorf("Unexpected coordinates: %s/%s", snapshot.Owner, snapshot.Repo)
	}
	if len(snapshot.PullRequests) != 2 {
		t.Fatalf("Expected 2 pull requests, got %d", len(snapshot.PullRequests))
	}

	first := snapshot.PullRequests[0]
	if want := []string{"alice", "bob", "carol"}; !reflect.DeepEqual(first.Reviewers, want) {
		t.Errorf("Expected merged reviewers %v, got %v", want, first.Reviewers)
	}
	if first.LastCommentAt == nil {
		t.Error("Expected a last comment time on #7")
	}
	if len(snapshot.Reviews[7]) != 2 {
		t.Errorf("Expected 2 reviews for #7, got %d", len(snapshot.Reviews[7]))
	}

	second := snapshot.PullRequests[1]
	if len(second.Reviewers) != 0 {
		t.Errorf("Expected no reviewers on #8, got %v", second.Reviewers)
	}
	if second.LastCommentAt != nil {
		t.Errorf("Expected no comment time on #8, got %v", second.LastCommentAt)
	}
}

func TestClientSnapshot_ReviewFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/widgets/pulls" {
			w.Write([]byte(`[{
				"number": 7,
				"title": "x",
				"html_url": "https://github.com/acme/widgets/pull/7",
				"created_at": "2024-03-01T10:00:00Z",
				"updated_at": "2024-03-01T10:00:00Z",
				"user": {"login": "dev"}
			}]`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Bad credentials"}`))
	}))
	defer server.Close()

	client := NewClient("test-token",
		WithHTTPClient(server.Client()),
		WithBaseURL(server.URL),
	)

	_, err := client.Snapshot(context.Background(), "acme", "widgets")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestPipelineIdempotence(t *testing.T) {
	server := snapshotTestServer(t)
	defer server.Close()

	client := NewClient("test-token",
		WithHTTPClient(server.Client()),
		WithBaseURL(server.URL),
	)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	render := func() string {
		snapshot, err := client.Snapshot(context.Background(), "acme", "widgets")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		report, err := BuildReport(snapshot, now)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return report.Markdown()
	}

	// Two full pipeline runs against an unchanged source must produce
	// byte-identical documents.
	if first, second := render(), render(); first != second {
		t.Errorf("Pipeline runs over identical source data differ:\n%s\n---\n%s", first, second)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("test-token")

	gc, ok := client.github.(*githubClient)
	if !ok {
		t.Fatalf("Expected a githubClient, got %T", client.github)
	}
	if gc.api != githubAPI {
		t.Errorf("Expected default API endpoint, got %q", gc.api)
	}
	if _, ok := gc.client.Transport.(*RetryTransport); !ok {
		t.Errorf("Expected a retrying transport for reads, got %T", gc.client.Transport)
	}
}

func TestWithBaseURL(t *testing.T) {
	client := NewClient("test-token", WithBaseURL("https://ghe.example.com/api/v3/"))

	gc, ok := client.github.(*githubClient)
	if !ok {
		t.Fatalf("Expected a githubClient, got %T", client.github)
	}
	if gc.api != "https://ghe.example.com/api/v3" {
		t.Errorf("Expected trimmed base URL, got %q", gc.api)
	}
}

func TestWithHTTPClient_WrapsTransport(t *testing.T) {
	client := NewClient("test-token", WithHTTPClient(&http.Client{}))

	gc, ok := client.github.(*githubClient)
	if !ok {
		t.Fatalf("Expected a githubClient, got %T", client.github)
	}
	if _, ok := gc.client.Transport.(*RetryTransport); !ok {
		t.Errorf("Expected the custom client to gain a retrying transport, got %T", gc.client.Transport)
	}
}

func TestTierGlyph(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierNeedsTwo, "🔴"},
		{TierNeedsOne, "🟡"},
		{TierReady, "🟢"},
		{Tier("unknown"), "⚪"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := tt.tier.Glyph(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSnapshotReviewerMergeIsSorted(t *testing.T) {
	server := snapshotTestServer(t)
	defer server.Close()

	client := NewClient("test-token",
		WithHTTPClient(server.Client()),
		WithBaseURL(server.URL),
	)

	snapshot, err := client.Snapshot(context.Background(), "acme", "widgets")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	joined := strings.Join(snapshot.PullRequests[0].Reviewers, ", ")
	if joined != "alice, bob, carol" {
		t.Errorf("Expected sorted reviewer list, got %q", joined)
	}
}
