// Package sources holds one weight-resolution adapter per external source.
// Default chain order: marketplace listing, vendor spec page, vendor
// support search, then the completion service as last resort.
package sources

import (
	"context"
	"errors"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/resolve"
)

// classifyBrowser folds browser-layer failures into the resolution error
// taxonomy: dead session is fatal, expired waits are recoverable timeouts,
// context errors pass through untouched.
func classifyBrowser(err error, ref string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, browser.ErrSessionDead):
		return &resolve.FatalError{Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, browser.ErrWaitTimeout):
		return &resolve.FetchError{Ref: ref, Timeout: true, Err: err}
	default:
		return &resolve.FetchError{Ref: ref, Err: err}
	}
}

func pageFromDoc(doc resolve.Document) (*browser.Page, error) {
	page, ok := doc.(*browser.Page)
	if !ok {
		return nil, errors.New("document is not a rendered page")
	}
	return page, nil
}
