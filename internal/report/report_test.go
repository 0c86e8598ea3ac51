package report

import (
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/weightfill/internal/dataset"
	"github.com/joelkehle/weightfill/internal/resolve"
)

func sampleSummary() Summary {
	return Summary{
		RunID:      "run-1",
		InputPath:  "in.csv",
		OutputPath: "out.csv",
		StartedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC),
		TotalRows:  10,
		Attempted:  4,
		Results: []resolve.Result{
			{RowKey: "1", Name: "Kettle", Found: true, Grams: 1200, Method: "ddg→amazon(Item Weight)"},
			{RowKey: "2", Name: "Scale", Found: true, Method: "support(preview)"},
			{RowKey: "3", Name: "Fan", Found: true, Method: "ddg→amazon(Item Weight)"},
			{RowKey: "4", Name: "Mystery", Found: false},
		},
		Review: []dataset.ReviewEntry{
			{Product: "Mystery", NoteOrURL: dataset.NoSourceFound},
		},
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	md := BuildMarkdown(sampleSummary())

	for _, want := range []string{
		"# Weight Resolution Run",
		"- Run ID: run-1",
		"| Needing resolution | 4 |",
		"| Resolved this run | 3 |",
		"| Manual review | 1 |",
		"## Detection Methods",
		"## Manual Review",
		"| Mystery | no source found |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "aborted") {
		t.Fatalf("clean run should not mention an abort:\n%s", md)
	}
}

func TestBuildMarkdownMethodOrdering(t *testing.T) {
	md := BuildMarkdown(sampleSummary())

	amazon := strings.Index(md, "| ddg→amazon(Item Weight) | 2 |")
	support := strings.Index(md, "| support(preview) | 1 |")
	if amazon < 0 || support < 0 {
		t.Fatalf("method counts missing:\n%s", md)
	}
	if amazon > support {
		t.Fatalf("methods should be ordered by count desc:\n%s", md)
	}
}

func TestBuildMarkdownAborted(t *testing.T) {
	s := sampleSummary()
	s.Aborted = "browser session lost"
	md := BuildMarkdown(s)
	if !strings.Contains(md, "**Run aborted early:** browser session lost") {
		t.Fatalf("abort notice missing:\n%s", md)
	}
}

func TestBuildHTMLRendersTables(t *testing.T) {
	html, err := buildHTML(BuildMarkdown(sampleSummary()))
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("GFM tables should render as <table>:\n%s", html)
	}
	if !strings.Contains(html, "Weight Resolution Run") {
		t.Fatalf("title missing from document:\n%s", html)
	}
}
