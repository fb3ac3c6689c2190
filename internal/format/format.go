// Package format renders retrieval results as Markdown for human readers.
package format

import (
	"fmt"
	"sort"
	"strings"

	"caserag/internal/domain"
)

// NoResults is shown when a query produced no matches.
const NoResults = "No similar posts found in the database."

var labelIcons = map[domain.Label]string{
	domain.LabelSupportive: "🟢",
	domain.LabelIndicator:  "🟡",
	domain.LabelIdeation:   "🟠",
	domain.LabelBehavior:   "🔴",
	domain.LabelAttempt:    "🚨",
}

// NeutralIcon marks labels outside the known set.
const NeutralIcon = "⚪"

// LabelIcon returns the marker used for a label.
func LabelIcon(l domain.Label) string {
	if icon, ok := labelIcons[l]; ok {
		return icon
	}
	return NeutralIcon
}

// SimilarityPercent truncates a cosine score to a whole percentage.
func SimilarityPercent(score float64) int {
	return int(score * 100)
}

// SimilarCases renders results as a Markdown list of case cards.
func SimilarCases(results []domain.SimilarityResult) string {
	if len(results) == 0 {
		return NoResults
	}
	var b strings.Builder
	b.WriteString("## 📚 Similar Cases from Reddit Database\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\n### %d. %s Case %d - %s Risk (%d%% similar)\n\n", i+1, LabelIcon(r.Label), r.ID, r.Label, SimilarityPercent(r.Score))
		fmt.Fprintf(&b, "**User:** %s\n\n", r.Author)
		b.WriteString("**Post Content:**\n")
		fmt.Fprintf(&b, "> %s\n\n", r.Preview)
		fmt.Fprintf(&b, "**Risk Classification:** %s\n\n---\n", r.Label)
	}
	return b.String()
}

// SortedLabels orders the keys of a distribution: known labels by severity,
// then unknown labels alphabetically.
func SortedLabels(dist map[domain.Label]int) []domain.Label {
	labels := make([]domain.Label, 0, len(dist))
	for l := range dist {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := labels[i].Rank(), labels[j].Rank()
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		default:
			return labels[i] < labels[j]
		}
	})
	return labels
}

// Distribution renders a label count table, one label per line.
func Distribution(dist map[domain.Label]int) string {
	if len(dist) == 0 {
		return "No documents indexed."
	}
	total := 0
	for _, n := range dist {
		total += n
	}
	var b strings.Builder
	for _, l := range SortedLabels(dist) {
		fmt.Fprintf(&b, "%s %-12s %5d\n", LabelIcon(l), l, dist[l])
	}
	fmt.Fprintf(&b, "  %-12s %5d\n", "Total", total)
	return b.String()
}
