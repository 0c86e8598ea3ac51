// Package browser wraps a Chromium session behind the small document
// surface the source adapters need: navigate, bounded waits, and text
// extraction from rendered pages.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

var (
	// ErrWaitTimeout marks a bounded wait that expired. Recoverable.
	ErrWaitTimeout = errors.New("wait timed out")
	// ErrSessionDead marks a session whose browser context is gone.
	// Callers must stop issuing work on this session.
	ErrSessionDead = errors.New("browser session unusable")
)

type Config struct {
	ChromePath  string
	Headless    bool
	UserAgent   string
	WaitTimeout time.Duration
}

const defaultWaitTimeout = 10 * time.Second

// Session owns one exclusive Chromium tab. Sessions are not safe for
// concurrent use; each worker creates its own and closes it on every exit
// path.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = detectChromePath()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent(cfg.UserAgent),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     taskCtx,
		cancels: []context.CancelFunc{taskCancel, allocCancel},
		timeout: cfg.WaitTimeout,
	}
	// Spawning the browser up front surfaces a missing binary immediately
	// instead of on the first row.
	if err := chromedp.Run(taskCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start chromium: %w", err)
	}
	return s, nil
}

func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// run executes actions with the session's bounded wait timeout and folds
// chromedp failures into the package error taxonomy.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrSessionDead, s.ctx.Err())
	}
	timeoutCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	err := chromedp.Run(timeoutCtx, actions...)
	if err == nil {
		return nil
	}
	if s.ctx.Err() != nil && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrSessionDead, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrWaitTimeout, s.timeout)
	}
	return err
}

// Navigate loads a URL (or data: document) and waits for the body to be
// ready, returning the live page.
func (s *Session) Navigate(ctx context.Context, url string) (*Page, error) {
	if err := s.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return &Page{s: s}, nil
}

// Page is a queryable view of the session's current document. It stays
// valid only until the next Navigate on the same session.
type Page struct {
	s *Session
}

func (p *Page) WaitVisible(ctx context.Context, sel string) error {
	return p.s.run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// WaitLocationContains polls the page URL until it contains substr or the
// wait budget expires.
func (p *Page) WaitLocationContains(ctx context.Context, substr string) error {
	deadline := time.Now().Add(p.s.timeout)
	for {
		loc, err := p.Location(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(loc, substr) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w waiting for url to contain %q", ErrWaitTimeout, substr)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Text returns the rendered text of the first element matching sel.
func (p *Page) Text(ctx context.Context, sel string) (string, error) {
	var out string
	if err := p.s.run(ctx, chromedp.Text(sel, &out, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return out, nil
}

// Texts returns the rendered text of every element matching sel, in
// document order.
func (p *Page) Texts(ctx context.Context, sel string) ([]string, error) {
	var out []string
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(function(el){return el.innerText})`, sel)
	if err := p.s.run(ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Attrs returns the given attribute of every element matching sel,
// skipping elements without it.
func (p *Page) Attrs(ctx context.Context, sel, attr string) ([]string, error) {
	var out []string
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(function(el){return el.getAttribute(%q)||""}).filter(function(v){return v!==""})`,
		sel, attr)
	if err := p.s.run(ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

// FullText returns the rendered text of the whole document body.
func (p *Page) FullText(ctx context.Context) (string, error) {
	return p.Text(ctx, "body")
}

func (p *Page) Click(ctx context.Context, sel string) error {
	return p.s.run(ctx, chromedp.Click(sel, chromedp.ByQuery))
}

// SendKeys types value into the first element matching sel.
func (p *Page) SendKeys(ctx context.Context, sel, value string) error {
	return p.s.run(ctx, chromedp.SendKeys(sel, value, chromedp.ByQuery))
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
