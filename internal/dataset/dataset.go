// Package dataset owns the working catalog: loading the tabular input,
// filtering unresolved rows, and writing resolved weights back without
// disturbing rows that already hold one.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joelkehle/weightfill/internal/resolve"
)

const (
	ColumnProductName     = "Product Name"
	ColumnModelNumber     = "Model Number"
	ColumnWeight          = "Weight"
	ColumnDetectionMethod = "Detection Method"
	ColumnWeightUnit      = "WeightUnit"
)

type ProductRow struct {
	// Key is the stable row key: the 1-based position in the input file.
	Key             string
	Name            string
	ModelNumber     string
	Weight          float64
	DetectionMethod string
	WeightUnit      string
}

// Table is the in-memory working dataset for one run. It is mutated only
// through Apply and flushed with WriteCSV to a new artifact; the input file
// is never rewritten.
type Table struct {
	inputPath string
	rows      []ProductRow
	byKey     map[string]int
}

// LoadCSV reads the catalog. A blank or non-numeric Weight cell is coerced
// to 0, which marks the row unresolved. Missing optional columns are
// tolerated.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col[ColumnProductName]; !ok {
		return nil, fmt.Errorf("dataset %s has no %q column", path, ColumnProductName)
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	t := &Table{inputPath: path, byKey: map[string]int{}}
	for n, record := range records[1:] {
		weight, err := strconv.ParseFloat(cell(record, ColumnWeight), 64)
		if err != nil || weight < 0 {
			weight = 0
		}
		row := ProductRow{
			Key:             strconv.Itoa(n + 1),
			Name:            cell(record, ColumnProductName),
			ModelNumber:     cell(record, ColumnModelNumber),
			Weight:          weight,
			DetectionMethod: cell(record, ColumnDetectionMethod),
			WeightUnit:      cell(record, ColumnWeightUnit),
		}
		t.byKey[row.Key] = len(t.rows)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *Table) Len() int { return len(t.rows) }

// Unresolved returns the rows still needing a weight, in file order.
func (t *Table) Unresolved() []ProductRow {
	var out []ProductRow
	for _, row := range t.rows {
		if row.Weight == 0 {
			out = append(out, row)
		}
	}
	return out
}

// UnresolvedWork maps the unresolved rows into orchestrator work items.
func (t *Table) UnresolvedWork() []resolve.Row {
	var out []resolve.Row
	for _, row := range t.Unresolved() {
		out = append(out, resolve.Row{Key: row.Key, Name: row.Name})
	}
	return out
}

// Apply merges one result into the table. Rows that already hold a nonzero
// weight are never overwritten, so re-running the pipeline only fills
// gaps. Returns true when the row was updated.
func (t *Table) Apply(res resolve.Result) bool {
	if !res.Found {
		return false
	}
	i, ok := t.byKey[res.RowKey]
	if !ok {
		return false
	}
	if t.rows[i].Weight != 0 {
		return false
	}
	t.rows[i].Weight = res.Grams
	t.rows[i].DetectionMethod = res.Method
	t.rows[i].WeightUnit = res.Unit
	return true
}

// Row returns a copy of the row for key.
func (t *Table) Row(key string) (ProductRow, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return ProductRow{}, false
	}
	return t.rows[i], true
}

// WriteCSV persists the full dataset to a new artifact. Writing over the
// input file is refused.
func (t *Table) WriteCSV(path string) error {
	if samePath(path, t.inputPath) {
		return fmt.Errorf("refusing to overwrite input dataset %s", t.inputPath)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{ColumnProductName, ColumnModelNumber, ColumnWeight, ColumnDetectionMethod, ColumnWeightUnit}); err != nil {
		return err
	}
	for _, row := range t.rows {
		record := []string{
			row.Name,
			row.ModelNumber,
			formatWeight(row.Weight),
			row.DetectionMethod,
			row.WeightUnit,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReviewEntry is one manual-review row: a product no adapter could
// resolve, with the last reference visited or a no-source marker.
type ReviewEntry struct {
	Product   string
	NoteOrURL string
}

const NoSourceFound = "no source found"

// ReviewEntryFor builds the manual-review entry for an unresolved result.
func ReviewEntryFor(res resolve.Result) ReviewEntry {
	note := res.LastRef
	if note == "" {
		note = NoSourceFound
	}
	return ReviewEntry{Product: res.Name, NoteOrURL: note}
}

// WriteReviewCSV persists the manual-review artifact.
func WriteReviewCSV(path string, entries []ReviewEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create review log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Product", "Note_or_URL"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Product, e.NoteOrURL}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatWeight(w float64) string {
	if w == float64(int64(w)) {
		return strconv.FormatInt(int64(w), 10)
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
