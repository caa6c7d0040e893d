package prpulse

import (
	"strings"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	lastComment := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

	snapshot := &Snapshot{
		Owner: "acme",
		Repo:  "widgets",
		PullRequests: []PullRequest{
			{
				Number:        7,
				Title:         "Add feature",
				Author:        "dev1",
				HTMLURL:       "https://github.com/acme/widgets/pull/7",
				CreatedAt:     time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
				UpdatedAt:     time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
				LastCommentAt: &lastComment,
				Reviewers:     []string{"alice", "bob"},
			},
			{
				Number:    8,
				Title:     "Fix bug",
				Author:    "dev2",
				HTMLURL:   "https://github.com/acme/widgets/pull/8",
				CreatedAt: time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC),
			},
		},
		Reviews: map[int][]Review{},
	}

	report, err := BuildReport(snapshot, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var out strings.Builder
	if err := WriteCSV(&out, report); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := `PR Link,Title,CreatedDate,LastModifiedDate,LastCommentDate,Age,Reviewers
https://github.com/acme/widgets/pull/7,Add feature,2024-03-13T10:00:00Z,2024-03-14T09:00:00Z,2024-03-14T10:30:00Z,2d 2h,"alice, bob"
https://github.com/acme/widgets/pull/8,Fix bug,2024-03-14T08:00:00Z,2024-03-14T08:00:00Z,No comments,1d 4h,None
`
	if got := out.String(); got != want {
		t.Errorf("CSV mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
