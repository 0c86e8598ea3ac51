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

const (
	supportTabSel     = `li.search-tabs--item[data-tab-type="support"]`
	supportPreviewSel = "div.support-result-item__left"
	supportLinkSel    = "a.support-result-item__left--link"
)

type VendorSupportConfig struct {
	Session *browser.Session
	BaseURL string
}

// VendorSupport resolves weights from the vendor's support articles:
// search "<product> weight", switch to the support tab, scan the result
// previews, and only then open the first article for a full-text scan.
type VendorSupport struct {
	cfg VendorSupportConfig
}

func NewVendorSupport(cfg VendorSupportConfig) *VendorSupport {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultVendorBaseURL
	}
	return &VendorSupport{cfg: cfg}
}

func (v *VendorSupport) Name() string { return "support" }

func (v *VendorSupport) Locate(ctx context.Context, product string) (resolve.Reference, error) {
	searchURL := fmt.Sprintf("%s/search?keyword=%s",
		strings.TrimRight(v.cfg.BaseURL, "/"), url.QueryEscape(product+" weight"))
	page, err := v.cfg.Session.Navigate(ctx, searchURL)
	if err != nil {
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	if err := page.Click(ctx, supportTabSel); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return resolve.Reference{}, fmt.Errorf("%w: no support tab for query", resolve.ErrNoCandidate)
		}
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	if err := page.WaitVisible(ctx, supportPreviewSel); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return resolve.Reference{}, fmt.Errorf("%w: no support results", resolve.ErrNoCandidate)
		}
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	loc, err := page.Location(ctx)
	if err != nil {
		return resolve.Reference{}, classifyBrowser(err, searchURL)
	}
	return resolve.Reference{URL: loc}, nil
}

func (v *VendorSupport) Fetch(ctx context.Context, ref resolve.Reference) (resolve.Document, error) {
	page, err := v.cfg.Session.Navigate(ctx, ref.URL)
	if err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	if err := page.WaitVisible(ctx, supportPreviewSel); err != nil {
		return nil, classifyBrowser(err, ref.URL)
	}
	return page, nil
}

func (v *VendorSupport) Extract(ctx context.Context, doc resolve.Document) (extract.Candidate, error) {
	page, err := pageFromDoc(doc)
	if err != nil {
		return extract.Candidate{}, err
	}

	previews, err := page.Texts(ctx, supportPreviewSel)
	if err != nil {
		return extract.Candidate{}, classifyBrowser(err, "")
	}
	if cand, err := extract.First(strings.Join(previews, " "), extract.SupportPatterns); err == nil {
		cand.Label = "preview"
		return cand, nil
	}

	// The previews said nothing; open the first article. A vanished link
	// means the results re-rendered under us, so re-drive the attempt.
	if err := page.Click(ctx, supportLinkSel); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return extract.Candidate{}, fmt.Errorf("%w: support result link gone", resolve.ErrStaleReference)
		}
		return extract.Candidate{}, classifyBrowser(err, "")
	}
	text, err := page.FullText(ctx)
	if err != nil {
		return extract.Candidate{}, classifyBrowser(err, "")
	}
	cand, err := extract.First(text, extract.SupportPatterns)
	if err != nil {
		return extract.Candidate{}, resolve.ErrNotFound
	}
	cand.Label = "full"
	return cand, nil
}
