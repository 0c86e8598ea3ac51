package resolve

import (
	"context"

	"github.com/joelkehle/weightfill/internal/extract"
)

// Reference points an adapter's Fetch step at a located candidate. URL is
// what gets recorded for manual review; non-browsing adapters carry their
// fetch input in Query instead.
type Reference struct {
	URL   string
	Query string
}

// Document is whatever an adapter's Fetch step produces for its own
// Extract step: a live browser page, a completion reply, an inline body.
// The orchestrator only threads it through.
type Document any

// Adapter resolves a product name against one external source. Each call
// sequence is driven by the orchestrator as Locate → Fetch → Extract, with
// failed attempts re-driven from Locate.
type Adapter interface {
	Name() string
	// Locate builds or discovers a candidate reference for the product.
	// Returns ErrNoCandidate when no plausible target exists.
	Locate(ctx context.Context, product string) (Reference, error)
	// Fetch retrieves a queryable document for the reference. Returns
	// *FetchError on transport or rendering failure, *FatalError when
	// the rendering substrate died.
	Fetch(ctx context.Context, ref Reference) (Document, error)
	// Extract pulls the first plausible weight candidate out of the
	// document. Returns ErrNotFound when the document holds none.
	Extract(ctx context.Context, doc Document) (extract.Candidate, error)
}

// invocationState tracks how far a single adapter attempt got. Recorded on
// trace spans and in failure logs.
type invocationState int

const (
	stateNotStarted invocationState = iota
	stateLocated
	stateFetched
	stateExtracted
)

func (s invocationState) String() string {
	switch s {
	case stateLocated:
		return "located"
	case stateFetched:
		return "fetched"
	case stateExtracted:
		return "extracted"
	default:
		return "not_started"
	}
}

// Row is one unresolved catalog entry handed to the orchestrator.
type Row struct {
	Key  string
	Name string
}

// Result is the terminal outcome for one row. Found=false with an empty
// Method sends the row to manual review.
type Result struct {
	RowKey string
	Name   string
	Found  bool
	Grams  float64
	Unit   string
	Method string
	// LastRef is the last reference visited while trying, kept for the
	// manual-review log. Empty when no source was ever located.
	LastRef string
}
