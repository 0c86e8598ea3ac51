package dataset

import (
	"path/filepath"
	"testing"

	"github.com/joelkehle/weightfill/internal/resolve"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalRecordsResults(t *testing.T) {
	j := openTestJournal(t)
	if err := j.BeginRun("run-1", "products.csv", 3); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	results := []resolve.Result{
		{RowKey: "2", Name: "Acme Cable", Found: false, LastRef: "https://a.example/last"},
		{RowKey: "1", Name: "Acme Widget 2", Found: true, Grams: 1200, Unit: "kg", Method: "vendor-spec(specs)"},
	}
	for _, r := range results {
		if err := j.RecordResult("run-1", r); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}
	if err := j.CompleteRun("run-1"); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}

	got, err := j.ResultsForRun("run-1")
	if err != nil {
		t.Fatalf("ResultsForRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 results, got %d", len(got))
	}
	// Row-key order, not insertion order.
	if got[0].RowKey != "1" || !got[0].Found || got[0].Grams != 1200 {
		t.Fatalf("unexpected first result: %+v", got[0])
	}
	if got[1].RowKey != "2" || got[1].Found || got[1].LastRef != "https://a.example/last" {
		t.Fatalf("unexpected second result: %+v", got[1])
	}
}

func TestJournalResultRewriteIsIdempotent(t *testing.T) {
	j := openTestJournal(t)
	if err := j.BeginRun("run-1", "products.csv", 1); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	res := resolve.Result{RowKey: "1", Name: "X", Found: true, Grams: 100, Unit: "g", Method: "API(reply)"}
	if err := j.RecordResult("run-1", res); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := j.RecordResult("run-1", res); err != nil {
		t.Fatalf("RecordResult again: %v", err)
	}
	got, err := j.ResultsForRun("run-1")
	if err != nil {
		t.Fatalf("ResultsForRun: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want a single row after rewrite, got %d", len(got))
	}
}

func TestJournalReview(t *testing.T) {
	j := openTestJournal(t)
	if err := j.RecordReview("run-1", ReviewEntry{Product: "Acme Cable", NoteOrURL: NoSourceFound}); err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	got, err := j.ReviewForRun("run-1")
	if err != nil {
		t.Fatalf("ReviewForRun: %v", err)
	}
	if len(got) != 1 || got[0].NoteOrURL != NoSourceFound {
		t.Fatalf("unexpected review entries: %+v", got)
	}
	other, err := j.ReviewForRun("run-2")
	if err != nil {
		t.Fatalf("ReviewForRun: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("review entries leaked across runs: %+v", other)
	}
}
