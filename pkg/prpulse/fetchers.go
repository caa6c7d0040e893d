package prpulse

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const maxPerPage = 100

// openPullRequests lists every open pull request, following pagination until
// the source reports no further pages.
func (c *Client) openPullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	c.logger.DebugContext(ctx, "fetching open pull requests", "owner", owner, "repo", repo)

	var prs []PullRequest
	page := 1

	for {
		path := fmt.Sprintf("/repos/%s/%s/pulls?state=open&page=%d&per_page=%d",
			owner, repo, page, maxPerPage)
		var raw []*githubPullRequest
		resp, err := c.github.get(ctx, path, &raw)
		if err != nil {
			return nil, fmt.Errorf("listing open pull requests: %w: %w", ErrSourceUnavailable, err)
		}

		for _, pr := range raw {
			normalized, err := normalizePullRequest(pr)
			if err != nil {
				return nil, err
			}
			prs = append(prs, normalized)
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	c.logger.DebugContext(ctx, "fetched open pull requests", "count", len(prs))
	return prs, nil
}

// normalizePullRequest converts a wire record into a PullRequest, rejecting
// records that lack a required field.
func normalizePullRequest(pr *githubPullRequest) (PullRequest, error) {
	if pr.Number == 0 {
		return PullRequest{}, fmt.Errorf("pull request: %w: missing number", ErrMalformedRecord)
	}
	if pr.Title == "" {
		return PullRequest{}, fmt.Errorf("pull request #%d: %w: missing title", pr.Number, ErrMalformedRecord)
	}
	if pr.User == nil || pr.User.Login == "" {
		return PullRequest{}, fmt.Errorf("pull request #%d: %w: missing author", pr.Number, ErrMalformedRecord)
	}
	if pr.CreatedAt.IsZero() {
		return PullRequest{}, fmt.Errorf("pull request #%d: %w: missing created_at", pr.Number, ErrMalformedRecord)
	}

	var requested []string
	for _, user := range pr.RequestedReviewers {
		if user != nil && user.Login != "" {
			requested = append(requested, user.Login)
		}
	}
	for _, team := range pr.RequestedTeams {
		if team.Name != "" {
			requested = append(requested, team.Name)
		}
	}

	return PullRequest{
		Number:    pr.Number,
		Title:     pr.Title,
		Author:    pr.User.Login,
		HTMLURL:   pr.HTMLURL,
		CreatedAt: pr.CreatedAt,
		UpdatedAt: pr.UpdatedAt,
		Draft:     pr.Draft,
		Reviewers: requested,
	}, nil
}

// reviews lists every submitted review for one pull request. Pending
// (unsubmitted) reviews are not decisions and are dropped.
func (c *Client) reviews(ctx context.Context, owner, repo string, prNumber int) ([]Review, error) {
	c.logger.DebugContext(ctx, "fetching reviews", "owner", owner, "repo", repo, "pr", prNumber)

	var reviews []Review
	page := 1

	for {
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews?page=%d&per_page=%d",
			owner, repo, prNumber, page, maxPerPage)
		var raw []*githubReview
		resp, err := c.github.get(ctx, path, &raw)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for #%d: %w: %w", prNumber, ErrSourceUnavailable, err)
		}

		for _, review := range raw {
			state := strings.ToLower(review.State)
			if state == "" || state == "pending" {
				continue
			}
			if review.User == nil || review.User.Login == "" {
				return nil, fmt.Errorf("review on #%d: %w: missing reviewer", prNumber, ErrMalformedRecord)
			}
			if review.SubmittedAt.IsZero() {
				return nil, fmt.Errorf("review on #%d by %s: %w: missing submitted_at",
					prNumber, review.User.Login, ErrMalformedRecord)
			}
			reviews = append(reviews, Review{
				Reviewer:    review.User.Login,
				State:       ReviewState(state),
				SubmittedAt: review.SubmittedAt,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	c.logger.DebugContext(ctx, "fetched reviews", "pr", prNumber, "count", len(reviews))
	return reviews, nil
}

// lastCommentAt returns when the newest issue comment on a pull request was
// last updated, or nil when the PR has no comments.
func (c *Client) lastCommentAt(ctx context.Context, owner, repo string, prNumber int) (*time.Time, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments?per_page=1&sort=updated&direction=desc",
		owner, repo, prNumber)
	var comments []*githubComment
	if _, err := c.github.get(ctx, path, &comments); err != nil {
		return nil, fmt.Errorf("fetching last comment for #%d: %w: %w", prNumber, ErrSourceUnavailable, err)
	}

	if len(comments) == 0 || comments[0].UpdatedAt.IsZero() {
		return nil, nil //nolint:nilnil // No comments is a valid, non-error result.
	}
	at := comments[0].UpdatedAt
	return &at, nil
}

// reviewerNames merges the requested reviewers with everyone who actually
// submitted a review, deduplicated and sorted for stable rendering.
func reviewerNames(requested []string, reviews []Review) []string {
	seen := make(map[string]bool, len(requested)+len(reviews))
	var names []string
	for _, name := range requested {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, review := range reviews {
		if !seen[review.Reviewer] {
			seen[review.Reviewer] = true
			names = append(names, review.Reviewer)
		}
	}
	sort.Strings(names)
	return names
}
