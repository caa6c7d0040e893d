package prpulse

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// csvHeader is the column order of the CSV export.
var csvHeader = []string{
	"PR Link", "Title", "CreatedDate", "LastModifiedDate", "LastCommentDate", "Age", "Reviewers",
}

// WriteCSV writes the report as CSV, one row per pull request in report
// order. Timestamps use RFC 3339 as returned by the source.
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range report.Rows {
		pr := row.PullRequest
		lastComment := "No comments"
		if pr.LastCommentAt != nil {
			lastComment = pr.LastCommentAt.Format(time.RFC3339)
		}
		record := []string{
			pr.HTMLURL,
			pr.Title,
			pr.CreatedAt.Format(time.RFC3339),
			pr.UpdatedAt.Format(time.RFC3339),
			lastComment,
			row.Status.HumanAge,
			reviewerCell(pr.Reviewers),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for #%d: %w", pr.Number, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
