package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/joelkehle/weightfill/internal/resolve"
)

func writeInput(t *testing.T, records [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleInput(t *testing.T) string {
	return writeInput(t, [][]string{
		{"Product Name", "Model Number", "Weight", "Detection Method", "WeightUnit"},
		{"Acme Widget 2", "XW-200", "0", "", ""},
		{"Acme Scale", "SC-1", "500", "inline-html", "g"},
		{"Acme Cable", "", "", "", ""},
		{"Acme Stand", "ST-9", "n/a", "", ""},
	})
}

func TestLoadCSVCoercesWeights(t *testing.T) {
	tbl, err := LoadCSV(sampleInput(t))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("want 4 rows, got %d", tbl.Len())
	}
	unresolved := tbl.Unresolved()
	if len(unresolved) != 3 {
		t.Fatalf("want 3 unresolved rows, got %d", len(unresolved))
	}
	// Blank and non-numeric weights both coerce to 0.
	for _, row := range unresolved {
		if row.Weight != 0 {
			t.Fatalf("unresolved row with weight: %+v", row)
		}
	}
	if row, _ := tbl.Row("2"); row.Weight != 500 {
		t.Fatalf("resolved row mangled: %+v", row)
	}
}

func TestApplyFillsOnlyGaps(t *testing.T) {
	tbl, err := LoadCSV(sampleInput(t))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if !tbl.Apply(resolve.Result{RowKey: "1", Found: true, Grams: 1200, Unit: "kg", Method: "vendor-spec(specs)"}) {
		t.Fatal("expected row 1 to be filled")
	}
	// A later run reporting a different value must not clobber the
	// already-known weight.
	if tbl.Apply(resolve.Result{RowKey: "2", Found: true, Grams: 600, Unit: "g", Method: "API(reply)"}) {
		t.Fatal("nonzero weight must never be overwritten")
	}
	row, _ := tbl.Row("2")
	if row.Weight != 500 || row.DetectionMethod != "inline-html" {
		t.Fatalf("row 2 changed: %+v", row)
	}
	if tbl.Apply(resolve.Result{RowKey: "1", Found: false}) {
		t.Fatal("not-found result must not apply")
	}
	if tbl.Apply(resolve.Result{RowKey: "99", Found: true, Grams: 1}) {
		t.Fatal("unknown row key must not apply")
	}
}

func TestWriteCSVNewArtifact(t *testing.T) {
	input := sampleInput(t)
	tbl, err := LoadCSV(input)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	tbl.Apply(resolve.Result{RowKey: "1", Found: true, Grams: 1200, Unit: "kg", Method: "ddg→amazon(Item Weight)"})

	out := filepath.Join(filepath.Dir(input), "resolved.csv")
	if err := tbl.WriteCSV(out); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	again, err := LoadCSV(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	row, _ := again.Row("1")
	if row.Weight != 1200 || row.DetectionMethod != "ddg→amazon(Item Weight)" || row.WeightUnit != "kg" {
		t.Fatalf("round-tripped row: %+v", row)
	}
	if len(again.Unresolved()) != 2 {
		t.Fatalf("want 2 unresolved after fill, got %d", len(again.Unresolved()))
	}
}

func TestWriteCSVRefusesInputPath(t *testing.T) {
	input := sampleInput(t)
	tbl, err := LoadCSV(input)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if err := tbl.WriteCSV(input); err == nil {
		t.Fatal("writing over the input must be refused")
	}
}

func TestReviewEntryFor(t *testing.T) {
	e := ReviewEntryFor(resolve.Result{Name: "Acme Cable", LastRef: "https://a.example/p"})
	if e.NoteOrURL != "https://a.example/p" {
		t.Fatalf("unexpected note: %+v", e)
	}
	e = ReviewEntryFor(resolve.Result{Name: "Acme Cable"})
	if e.NoteOrURL != NoSourceFound {
		t.Fatalf("unexpected note: %+v", e)
	}
}

func TestWriteReviewCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.csv")
	entries := []ReviewEntry{
		{Product: "Acme Cable", NoteOrURL: NoSourceFound},
		{Product: "Acme Stand", NoteOrURL: "https://a.example/last"},
	}
	if err := WriteReviewCSV(path, entries); err != nil {
		t.Fatalf("WriteReviewCSV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0][1] != "Note_or_URL" || records[1][0] != "Acme Cable" {
		t.Fatalf("unexpected review artifact: %v", records)
	}
}
