package prpulse

import (
	"time"
)

// ReviewState represents a reviewer's decision, normalized to lowercase.
type ReviewState string

// Review states as reported by the GitHub API.
const (
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
	ReviewCommented        ReviewState = "commented"
	ReviewDismissed        ReviewState = "dismissed"
)

// Tier classifies how far a pull request is from merge readiness. It is a
// function of the distinct-approver count alone: zero approvals, one
// approval, or enough to merge.
type Tier string

// Readiness tiers.
const (
	TierNeedsTwo Tier = "needs-two" // no approvals yet
	TierNeedsOne Tier = "needs-one" // one approval so far
	TierReady    Tier = "ready"     // two or more approvals
)

// Glyph returns the color marker used when rendering the tier.
func (t Tier) Glyph() string {
	switch t {
	case TierNeedsTwo:
		return "🔴"
	case TierNeedsOne:
		return "🟡"
	case TierReady:
		return "🟢"
	default:
		return "⚪"
	}
}

// PullRequest is one open pull request as read from the source repository.
// Reviewers holds everyone attached to the PR: requested users, requested
// teams, and anyone who already submitted a review, deduplicated and sorted.
type PullRequest struct {
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastCommentAt *time.Time `json:"last_comment_at,omitempty"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	HTMLURL       string     `json:"html_url"`
	Reviewers     []string   `json:"reviewers"`
	Number        int        `json:"number"`
	Draft         bool       `json:"draft,omitempty"`
}

// Review is a single submitted review. Unsubmitted (pending) reviews are
// dropped at fetch time; every Review carries its own submission timestamp so
// "most recent decision per reviewer" never depends on response ordering.
type Review struct {
	SubmittedAt time.Time   `json:"submitted_at"`
	Reviewer    string      `json:"reviewer"`
	State       ReviewState `json:"state"`
}

// Status is the derived readiness classification of one pull request.
// It is computed, never persisted.
type Status struct {
	HumanAge  string `json:"human_age"`
	Number    int    `json:"number"`
	Age       int    `json:"age_days"`
	Approvers int    `json:"approvers"`
	Tier      Tier   `json:"tier"`
}

// Snapshot is the complete review state of a repository's open pull requests
// at one point in time. PullRequests preserves the order the source returned;
// Reviews is keyed by PR number.
type Snapshot struct {
	Reviews      map[int][]Review `json:"reviews"`
	Owner        string           `json:"owner"`
	Repo         string           `json:"repo"`
	PullRequests []PullRequest    `json:"pull_requests"`
}
