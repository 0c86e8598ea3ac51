// Package report renders a run summary: what was resolved, by which
// method, and what is left for manual review.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joelkehle/weightfill/internal/dataset"
	"github.com/joelkehle/weightfill/internal/resolve"
)

type Summary struct {
	RunID      string
	InputPath  string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
	TotalRows  int
	Attempted  int
	Results    []resolve.Result
	Review     []dataset.ReviewEntry
	// Aborted carries the fatal error text when the run stopped early.
	Aborted string
}

func (s Summary) resolved() int {
	n := 0
	for _, r := range s.Results {
		if r.Found {
			n++
		}
	}
	return n
}

// methodCounts tallies detection methods over the resolved results, sorted
// by count desc then name for a stable report.
func (s Summary) methodCounts() []methodCount {
	counts := map[string]int{}
	for _, r := range s.Results {
		if r.Found {
			counts[r.Method]++
		}
	}
	out := make([]methodCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, methodCount{Method: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Method < out[j].Method
	})
	return out
}

type methodCount struct {
	Method string
	Count  int
}

// BuildMarkdown renders the run summary as GFM markdown.
func BuildMarkdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Weight Resolution Run\n\n")
	fmt.Fprintf(&b, "- Run ID: %s\n", s.RunID)
	fmt.Fprintf(&b, "- Input: %s\n", s.InputPath)
	fmt.Fprintf(&b, "- Output: %s\n", s.OutputPath)
	fmt.Fprintf(&b, "- Started: %s\n", s.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Finished: %s\n\n", s.FinishedAt.Format(time.RFC3339))

	if s.Aborted != "" {
		fmt.Fprintf(&b, "**Run aborted early:** %s. Committed results below are preserved.\n\n", s.Aborted)
	}

	fmt.Fprintf(&b, "## Totals\n\n")
	fmt.Fprintf(&b, "| | Rows |\n|---|---|\n")
	fmt.Fprintf(&b, "| Catalog | %d |\n", s.TotalRows)
	fmt.Fprintf(&b, "| Needing resolution | %d |\n", s.Attempted)
	fmt.Fprintf(&b, "| Resolved this run | %d |\n", s.resolved())
	fmt.Fprintf(&b, "| Manual review | %d |\n\n", len(s.Review))

	if counts := s.methodCounts(); len(counts) > 0 {
		fmt.Fprintf(&b, "## Detection Methods\n\n")
		fmt.Fprintf(&b, "| Method | Rows |\n|---|---|\n")
		for _, mc := range counts {
			fmt.Fprintf(&b, "| %s | %d |\n", mc.Method, mc.Count)
		}
		b.WriteString("\n")
	}

	if len(s.Review) > 0 {
		fmt.Fprintf(&b, "## Manual Review\n\n")
		fmt.Fprintf(&b, "| Product | Note or URL |\n|---|---|\n")
		for _, e := range s.Review {
			fmt.Fprintf(&b, "| %s | %s |\n", e.Product, e.NoteOrURL)
		}
		b.WriteString("\n")
	}
	return b.String()
}
