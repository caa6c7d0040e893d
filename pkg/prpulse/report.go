package prpulse

import (
	"sort"
	"time"
)

const (
	// staleAgeDays is the age beyond which a pull request counts as stale.
	staleAgeDays = 30
	// agingAgeDays is the age at which a pull request starts growing old.
	agingAgeDays = 23
)

// Row pairs one pull request with its derived status.
type Row struct {
	PullRequest PullRequest
	Status      Status
}

// Summary holds the repository-wide counters. Each counter is computed
// independently over the same PR set, so one pull request may contribute to
// several of them.
type Summary struct {
	Total      int
	Unassigned int
	Stale      int
	Aging      int
}

// Report is everything the renderer needs: the counters plus per-PR rows in
// the exact order the source returned them.
type Report struct {
	Summary Summary
	Rows    []Row
	Stale   []Row // age > 30 days, oldest first
	Aging   []Row // 23 to 30 days old, oldest first
	Owner   string
	Repo    string
}

// BuildReport classifies every pull request in the snapshot and folds the
// results into counters and rows. Row order follows snapshot order, never
// re-sorted, so an unchanged snapshot yields a byte-identical rendering.
func BuildReport(snapshot *Snapshot, now time.Time) (*Report, error) {
	report := &Report{
		Owner: snapshot.Owner,
		Repo:  snapshot.Repo,
		Rows:  make([]Row, 0, len(snapshot.PullRequests)),
	}

	for _, pr := range snapshot.PullRequests {
		status, err := Classify(pr, snapshot.Reviews[pr.Number], now)
		if err != nil {
			return nil, err
		}
		row := Row{PullRequest: pr, Status: status}
		report.Rows = append(report.Rows, row)

		report.Summary.Total++
		if len(pr.Reviewers) == 0 {
			report.Summary.Unassigned++
		}
		switch {
		case status.Age > staleAgeDays:
			report.Summary.Stale++
			report.Stale = append(report.Stale, row)
		case status.Age >= agingAgeDays:
			report.Summary.Aging++
			report.Aging = append(report.Aging, row)
		}
	}

	sortOldestFirst(report.Stale)
	sortOldestFirst(report.Aging)

	return report, nil
}

func sortOldestFirst(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PullRequest.CreatedAt.Before(rows[j].PullRequest.CreatedAt)
	})
}
