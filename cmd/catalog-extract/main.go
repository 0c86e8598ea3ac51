package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/catalog"
	"github.com/joelkehle/weightfill/internal/dataset"
)

func main() {
	input := flag.String("input", "", "Export CSV holding raw listing HTML (required)")
	output := flag.String("output", "products.csv", "Catalog CSV to write")
	bodyColumn := flag.String("body-column", "Body (HTML)", "Name of the HTML body column")
	chromePath := flag.String("chrome", "", "Chromium binary path (autodetected when empty)")
	headless := flag.Bool("headless", true, "Run the browser headless")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing required flag -input")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bodies, err := readBodies(*input, *bodyColumn)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %s: %d listings", *input, len(bodies))

	session, err := browser.NewSession(ctx, browser.Config{ChromePath: *chromePath, Headless: *headless})
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()
	extractor := catalog.NewExtractor(session)

	out, err := os.Create(*output)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	w := csv.NewWriter(out)
	header := []string{
		dataset.ColumnProductName,
		dataset.ColumnModelNumber,
		dataset.ColumnWeight,
		dataset.ColumnDetectionMethod,
		dataset.ColumnWeightUnit,
	}
	if err := w.Write(header); err != nil {
		log.Fatal(err)
	}

	detected := 0
	for i, body := range bodies {
		if err := ctx.Err(); err != nil {
			break
		}
		product, err := extractor.ExtractBody(ctx, body)
		if err != nil {
			log.Fatalf("listing %d: %v", i+1, err)
		}
		weight := ""
		unit := ""
		if product.Method == catalog.MethodInlineHTML {
			weight = fmt.Sprintf("%.0f", product.WeightGrams)
			unit = "g"
			detected++
		}
		if err := w.Write([]string{product.NameEN, product.ModelNumber, weight, product.Method, unit}); err != nil {
			log.Fatal(err)
		}
		log.Printf("catalog-extract listing=%d name=%q method=%s", i+1, product.NameEN, product.Method)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s: %d listings, %d weights detected inline", *output, len(bodies), detected)
}

// readBodies pulls the HTML column out of the storefront export.
func readBodies(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty export", path)
	}
	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: no %q column", path, column)
	}
	bodies := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if col < len(rec) && rec[col] != "" {
			bodies = append(bodies, rec[col])
		}
	}
	return bodies, nil
}
