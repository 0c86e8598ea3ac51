package sources

import (
	"context"
	"fmt"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/resolve"
)

// Adapter names accepted by ChainConfig, in default priority order.
var DefaultAdapterOrder = []string{"marketplace", "vendorspec", "vendorsupport", "llm"}

type ChainConfig struct {
	// Adapters is the ordered subset of adapter names to run. Empty
	// selects DefaultAdapterOrder (llm included only when a Completer is
	// configured).
	Adapters      []string
	Browser       browser.Config
	SearchURL     string
	ListingHost   string
	VendorBaseURL string
	// Completer enables the llm adapter when non-nil.
	Completer Completer
}

// NewChainFactory returns an AdapterFactory building the configured chain.
// Each call owns one fresh browser session shared by the browser-backed
// adapters in that chain and closed by the returned teardown, so parallel
// workers never share a session.
func NewChainFactory(cfg ChainConfig) resolve.AdapterFactory {
	names := chainNames(cfg)

	return func(ctx context.Context) ([]resolve.Adapter, func(), error) {
		var session *browser.Session
		teardown := func() {
			if session != nil {
				session.Close()
			}
		}
		ensureSession := func() (*browser.Session, error) {
			if session != nil {
				return session, nil
			}
			s, err := browser.NewSession(ctx, cfg.Browser)
			if err != nil {
				return nil, err
			}
			session = s
			return session, nil
		}

		adapters := make([]resolve.Adapter, 0, len(names))
		for _, name := range names {
			switch name {
			case "marketplace":
				s, err := ensureSession()
				if err != nil {
					teardown()
					return nil, nil, err
				}
				adapters = append(adapters, NewMarketplace(MarketplaceConfig{
					Session: s, SearchURL: cfg.SearchURL, ListingHost: cfg.ListingHost,
				}))
			case "vendorspec":
				s, err := ensureSession()
				if err != nil {
					teardown()
					return nil, nil, err
				}
				adapters = append(adapters, NewVendorSpec(VendorSpecConfig{Session: s, BaseURL: cfg.VendorBaseURL}))
			case "vendorsupport":
				s, err := ensureSession()
				if err != nil {
					teardown()
					return nil, nil, err
				}
				adapters = append(adapters, NewVendorSupport(VendorSupportConfig{Session: s, BaseURL: cfg.VendorBaseURL}))
			case "llm":
				if cfg.Completer == nil {
					teardown()
					return nil, nil, fmt.Errorf("llm adapter requested but no completer configured")
				}
				adapters = append(adapters, NewLLM(cfg.Completer))
			default:
				teardown()
				return nil, nil, fmt.Errorf("unknown adapter %q", name)
			}
		}
		return adapters, teardown, nil
	}
}

func chainNames(cfg ChainConfig) []string {
	if len(cfg.Adapters) > 0 {
		return cfg.Adapters
	}
	var names []string
	for _, n := range DefaultAdapterOrder {
		if n == "llm" && cfg.Completer == nil {
			continue
		}
		names = append(names, n)
	}
	return names
}
