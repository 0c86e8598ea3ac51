package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/extract"
	"github.com/joelkehle/weightfill/internal/resolve"
)

const defaultVendorBaseURL = "https://www.mi.com/global"

// specKeywords are matched against individual spec-sheet cells only; a cell
// is short enough that a hit is almost always the product weight rather
// than some unrelated limit.
var specKeywords = []string{"product net weight", "net weight", "weight"}

type VendorSpecConfig struct {
	Session *browser.Session
	BaseURL string
}

// VendorSpec resolves weights from the vendor's own product pages: site
// search, first product result, specifications tab, keyword scan of the
// spec cells.
type VendorSpec struct {
	cfg VendorSpecConfig
}

func NewVendorSpec(cfg VendorSpecConfig) *VendorSpec {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultVendorBaseURL
	}
	return &VendorSpec{cfg: cfg}
}

func (v *VendorSpec) Name() string { return "vendor-spec" }

func (v *VendorSpec) searchURL(product string) string {
	return fmt.Sprintf("%s/search?keyword=%s", strings.TrimRight(v.cfg.BaseURL, "/"), url.QueryEscape(product))
}

func (v *VendorSpec) Locate(ctx context.Context, product string) (resolve.Reference, error) {
	searchURL := v.searchURL(product)
	page, err := v.cfg.Session.Navigate(ctx, searchURL)
	if err != nil {
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	// No product tile within the wait budget means the vendor does not
	// carry this product, not a transport failure.
	if err := page.WaitVisible(ctx, ".product-result-item"); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return resolve.Reference{}, fmt.Errorf("%w: no product results on vendor search", resolve.ErrNoCandidate)
		}
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	return resolve.Reference{URL: searchURL}, nil
}

func (v *VendorSpec) Fetch(ctx context.Context, ref resolve.Reference) (resolve.Document, error) {
	page, err := v.cfg.Session.Navigate(ctx, ref.URL)
	if err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	if err := page.WaitVisible(ctx, ".product-result-item"); err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	if err := page.Click(ctx, ".product-result-item"); err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	// The specs tab is missing on accessory pages; extraction then works
	// with whatever the landing view shows.
	if err := page.Click(ctx, "#nav-specs"); err != nil {
		if classified := classifyBrowser(err, ref.URL); resolve.IsFatal(classified) {
			return nil, classified
		}
	}
	return page, nil
}

func (v *VendorSpec) Extract(ctx context.Context, doc resolve.Document) (extract.Candidate, error) {
	page, err := pageFromDoc(doc)
	if err != nil {
		return extract.Candidate{}, err
	}
	cells, err := page.Texts(ctx, "span.xm-text")
	if err != nil {
		return extract.Candidate{}, classifyBrowser(err, "")
	}
	for _, cell := range cells {
		text := strings.TrimSpace(cell)
		if text == "" || !v.weightCell(text) {
			continue
		}
		cand, err := extract.First(text, extract.SpecCellPatterns)
		if err != nil {
			continue
		}
		cand.Label = "specs"
		return cand, nil
	}
	return extract.Candidate{}, resolve.ErrNotFound
}

func (v *VendorSpec) weightCell(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range specKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
