// Package catalog bootstraps the product dataset from raw storefront
// HTML bodies. Listings carry Arabic description blocks that state the
// English product name, the model number, and often the weight inline.
package catalog

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"strings"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/extract"
)

const (
	MethodInlineHTML  = "inline-html"
	MethodNotDetected = "not detected"

	nameLabel      = "اسم المنتج بالإنجليزي"
	modelLabel     = "رقم الموديل"
	modelMissing   = "غير متوفر"
	unknownProduct = "Unknown"
)

type Product struct {
	NameEN      string
	ModelNumber string
	WeightGrams float64
	Method      string
}

// Extractor renders listing bodies in a browser so the text we scan is
// what a shopper would see, not raw markup.
type Extractor struct {
	session *browser.Session
}

func NewExtractor(session *browser.Session) *Extractor {
	return &Extractor{session: session}
}

// ExtractBody renders one HTML body and pulls the product fields out of
// its visible text.
func (e *Extractor) ExtractBody(ctx context.Context, body string) (Product, error) {
	dataURL := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(body))
	page, err := e.session.Navigate(ctx, dataURL)
	if err != nil {
		return Product{}, err
	}
	paragraphs, err := page.Texts(ctx, "p, li, span, td")
	if err != nil && !errors.Is(err, browser.ErrWaitTimeout) {
		return Product{}, err
	}
	full, err := page.FullText(ctx)
	if err != nil {
		return Product{}, err
	}
	return productFromText(paragraphs, full), nil
}

// productFromText assembles a Product from the rendered text. Labeled
// fields read as "<label>: <value>"; the weight may appear anywhere in
// the body.
func productFromText(paragraphs []string, fullText string) Product {
	p := Product{
		NameEN: unknownProduct,
		Method: MethodNotDetected,
	}
	for _, line := range paragraphs {
		if v, ok := labeledValue(line, nameLabel); ok && v != "" {
			p.NameEN = v
		}
		if v, ok := labeledValue(line, modelLabel); ok && v != modelMissing {
			p.ModelNumber = v
		}
	}
	if cand, err := extract.First(fullText, extract.ArabicGramPatterns); err == nil {
		p.WeightGrams = math.Round(cand.Value)
		p.Method = MethodInlineHTML
	}
	return p
}

// labeledValue splits a "<label> ...: value" line. The colon may be the
// ASCII or the Arabic one depending on which editor touched the listing.
func labeledValue(line, label string) (string, bool) {
	if !strings.Contains(line, label) {
		return "", false
	}
	rest := line[strings.Index(line, label)+len(label):]
	rest = strings.TrimLeft(rest, " \t:：")
	return strings.TrimSpace(rest), true
}
