package prpulse

import (
	"fmt"
	"time"
)

const hoursPerDay = 24

// Classify derives the readiness status of one pull request at the given
// time. The current time is an explicit parameter so the function stays pure
// and testable.
func Classify(pr PullRequest, reviews []Review, now time.Time) (Status, error) {
	if pr.CreatedAt.IsZero() {
		return Status{}, fmt.Errorf("pull request #%d: %w: missing creation time",
			pr.Number, ErrMalformedRecord)
	}
	for _, review := range reviews {
		if review.SubmittedAt.IsZero() {
			return Status{}, fmt.Errorf("pull request #%d: %w: review by %q missing submitted time",
				pr.Number, ErrMalformedRecord, review.Reviewer)
		}
	}

	age := now.Sub(pr.CreatedAt)
	if age < 0 {
		// A creation time in the future is clock skew, not an error.
		age = 0
	}

	approvers := countApprovers(reviews)

	return Status{
		Number:    pr.Number,
		Age:       int(age / (hoursPerDay * time.Hour)),
		HumanAge:  humanAge(age),
		Approvers: approvers,
		Tier:      tierFor(approvers),
	}, nil
}

// countApprovers counts reviewers whose most recent decision is an approval.
// Response order from the source is not trusted; recency comes from each
// review's own timestamp, and later records win ties.
func countApprovers(reviews []Review) int {
	latest := make(map[string]Review, len(reviews))
	for _, review := range reviews {
		if existing, ok := latest[review.Reviewer]; !ok || !review.SubmittedAt.Before(existing.SubmittedAt) {
			latest[review.Reviewer] = review
		}
	}

	count := 0
	for _, review := range latest {
		if review.State == ReviewApproved {
			count++
		}
	}
	return count
}

// tierFor maps a distinct-approver count to a readiness tier. The mapping is
// total over non-negative counts, so classification never fails.
func tierFor(approvers int) Tier {
	switch {
	case approvers >= 2:
		return TierReady
	case approvers == 1:
		return TierNeedsOne
	default:
		return TierNeedsTwo
	}
}

// humanAge renders a duration as whole days plus leftover hours, e.g. "40d 3h".
func humanAge(d time.Duration) string {
	days := d / (hoursPerDay * time.Hour)
	hours := d % (hoursPerDay * time.Hour) / time.Hour
	return fmt.Sprintf("%dd %dh", days, hours)
}
