package prpulse

import (
	"fmt"
	"strings"
)

// emptyReviewers marks a pull request with nobody assigned or reviewing.
const emptyReviewers = "None"

// Title returns the document title for this report.
func (r *Report) Title() string {
	return fmt.Sprintf("Open PRs: %s/%s", r.Owner, r.Repo)
}

// Markdown renders the report as a Markdown document. The output is a pure
// function of the report: no clock reads and no map iteration, so an
// unchanged report always renders to a byte-identical document.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	fmt.Fprintf(&b, "- **Total open PRs:** %d\n", r.Summary.Total)
	fmt.Fprintf(&b, "- **No reviewers:** %d\n", r.Summary.Unassigned)
	fmt.Fprintf(&b, "- **Open more than 30 days:** %d\n", r.Summary.Stale)
	fmt.Fprintf(&b, "- **Growing old (23 to 30 days):** %d\n", r.Summary.Aging)
	b.WriteString("\nLegend: 🔴 needs two approvals, 🟡 needs one more approval, 🟢 ready to merge\n")

	b.WriteString("\n| PR | Title | Age | Reviewers | Status |\n")
	b.WriteString("|----|-------|-----|-----------|--------|\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| [#%d](%s) | %s | %s | %s | %s %s |\n",
			row.PullRequest.Number,
			row.PullRequest.HTMLURL,
			tableCell(titleCell(row.PullRequest)),
			row.Status.HumanAge,
			tableCell(reviewerCell(row.PullRequest.Reviewers)),
			row.Status.Tier.Glyph(),
			row.Status.Tier,
		)
	}

	writeAgeSection(&b, "Open more than 30 days (oldest first)", r.Stale)
	writeAgeSection(&b, "Growing old, 23 to 30 days (oldest first)", r.Aging)

	return b.String()
}

func writeAgeSection(b *strings.Builder, heading string, rows []Row) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, row := range rows {
		fmt.Fprintf(b, "- %d days: [#%d](%s); reviewers: %s\n",
			row.Status.Age,
			row.PullRequest.Number,
			row.PullRequest.HTMLURL,
			reviewerCell(row.PullRequest.Reviewers))
	}
}

func titleCell(pr PullRequest) string {
	if pr.Draft {
		return pr.Title + " (draft)"
	}
	return pr.Title
}

func reviewerCell(reviewers []string) string {
	if len(reviewers) == 0 {
		return emptyReviewers
	}
	return strings.Join(reviewers, ", ")
}

// tableCell escapes characters that would break Markdown table geometry.
func tableCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
