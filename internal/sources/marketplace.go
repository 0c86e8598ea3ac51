package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/extract"
	"github.com/joelkehle/weightfill/internal/resolve"
)

const (
	defaultSearchURL    = "https://duckduckgo.com/?q=%s&t=h_&ia=web"
	defaultListingHost  = "amazon.com"
	searchResultAnchors = "a.result__a, a[data-testid='result-title-a']"
)

type MarketplaceConfig struct {
	Session *browser.Session
	// SearchURL is a printf template taking the escaped query.
	SearchURL string
	// ListingHost is the marketplace domain a result link must point at.
	ListingHost string
}

// Marketplace resolves weights from a marketplace listing reached through a
// search engine: search "<product> amazon", follow the first listing link,
// read the structured product-details sections before falling back to a
// full-page scan.
type Marketplace struct {
	cfg MarketplaceConfig
}

func NewMarketplace(cfg MarketplaceConfig) *Marketplace {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.ListingHost == "" {
		cfg.ListingHost = defaultListingHost
	}
	return &Marketplace{cfg: cfg}
}

func (m *Marketplace) Name() string { return "ddg→amazon" }

func (m *Marketplace) Locate(ctx context.Context, product string) (resolve.Reference, error) {
	searchURL := fmt.Sprintf(m.cfg.SearchURL, url.QueryEscape(product+" amazon"))
	page, err := m.cfg.Session.Navigate(ctx, searchURL)
	if err != nil {
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	if err := page.WaitVisible(ctx, searchResultAnchors); err != nil {
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	hrefs, err := page.Attrs(ctx, searchResultAnchors, "href")
	if err != nil {
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	if href, ok := pickListing(hrefs, m.cfg.ListingHost); ok {
		return resolve.Reference{URL: href}, nil
	}
	return resolve.Reference{}, fmt.Errorf("%w: no %s link in search results", resolve.ErrNoCandidate, m.cfg.ListingHost)
}

// pickListing returns the first search-result link pointing at the
// marketplace host.
func pickListing(hrefs []string, host string) (string, bool) {
	for _, href := range hrefs {
		if strings.Contains(strings.ToLower(href), host) {
			return href, true
		}
	}
	return "", false
}

func (m *Marketplace) Fetch(ctx context.Context, ref resolve.Reference) (resolve.Document, error) {
	page, err := m.cfg.Session.Navigate(ctx, ref.URL)
	if err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	if err := page.WaitLocationContains(ctx, m.cfg.ListingHost); err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	return page, nil
}

func (m *Marketplace) Extract(ctx context.Context, doc resolve.Document) (extract.Candidate, error) {
	page, err := pageFromDoc(doc)
	if err != nil {
		return extract.Candidate{}, err
	}
	candidates, err := m.structuredCandidates(ctx, page)
	if err != nil {
		return extract.Candidate{}, err
	}
	// Structured candidates are tried in discovery order; the first one
	// whose value parses wins.
	for _, c := range candidates {
		cand, err := extract.First(c.value, extract.ValuePatterns)
		if err != nil {
			continue
		}
		cand.Label = c.key
		return cand, nil
	}

	text, err := page.FullText(ctx)
	if err != nil {
		return extract.Candidate{}, classifyBrowser(err, "")
	}
	cand, err := extract.First(text, extract.FullPagePatterns)
	if err != nil {
		return extract.Candidate{}, resolve.ErrNotFound
	}
	return cand, nil
}

type labeledValue struct {
	key   string
	value string
}

// structuredCandidates collects "…weight…"-keyed entries from the product
// details table and the detail bullets, in that order.
func (m *Marketplace) structuredCandidates(ctx context.Context, page *browser.Page) ([]labeledValue, error) {
	keys, err := page.Texts(ctx, "#productDetails_detailBullets_sections1 tr th")
	if err != nil {
		return nil, classifyBrowser(err, "")
	}
	vals, err := page.Texts(ctx, "#productDetails_detailBullets_sections1 tr td")
	if err != nil {
		return nil, classifyBrowser(err, "")
	}
	bullets, err := page.Texts(ctx, "#detailBullets_feature_div li")
	if err != nil {
		return nil, classifyBrowser(err, "")
	}
	return weightCandidates(keys, vals, bullets), nil
}

// weightCandidates pairs up table keys/values and splits bullet entries,
// keeping weight-keyed ones in discovery order: table rows first, bullets
// second.
func weightCandidates(keys, vals, bullets []string) []labeledValue {
	var out []labeledValue
	for i := 0; i < len(keys) && i < len(vals); i++ {
		key := strings.TrimSpace(keys[i])
		if strings.Contains(strings.ToLower(key), "weight") {
			out = append(out, labeledValue{key: key, value: strings.TrimSpace(vals[i])})
		}
	}
	for _, b := range bullets {
		parts := strings.SplitN(b, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if strings.Contains(strings.ToLower(key), "weight") {
			out = append(out, labeledValue{key: key, value: strings.TrimSpace(parts[1])})
		}
	}
	return out
}
