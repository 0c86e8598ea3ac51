package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joelkehle/weightfill/internal/extract"
	"github.com/joelkehle/weightfill/internal/resolve"
)

const llmSystemPrompt = "You answer questions about consumer product weights. " +
	"Reply with a single number followed by a unit, nothing else."

// Completer is the free-text completion capability. Failures at this level
// are treated as not-found by the adapter, never as fatal.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type AnthropicCompleter struct {
	messages AnthropicMessager
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCompleterFromEnv() (*AnthropicCompleter, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCompleter{messages: newAnthropicClient(apiKey)}, nil
}

func (a *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   64,
		System:      []anthropic.TextBlockParam{{Text: llmSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// LLM is the last-resort adapter: ask the completion service directly for
// the product's weight and parse the reply.
type LLM struct {
	completer Completer
}

func NewLLM(completer Completer) *LLM {
	return &LLM{completer: completer}
}

func (l *LLM) Name() string { return "API" }

// Locate builds the prompt. There is no URL to record for manual review.
func (l *LLM) Locate(ctx context.Context, product string) (resolve.Reference, error) {
	prompt := fmt.Sprintf("What is the weight of the product %q in grams? Just give the number followed by 'g'.", product)
	return resolve.Reference{Query: prompt}, nil
}

// Fetch asks the completion service. Any failure here maps to not-found:
// a broken or rate-limited completion service must never abort the run.
func (l *LLM) Fetch(ctx context.Context, ref resolve.Reference) (resolve.Document, error) {
	reply, err := l.completer.Complete(ctx, ref.Query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: completion failed: %v", resolve.ErrNotFound, err)
	}
	return reply, nil
}

func (l *LLM) Extract(ctx context.Context, doc resolve.Document) (extract.Candidate, error) {
	reply, ok := doc.(string)
	if !ok {
		return extract.Candidate{}, errors.New("document is not a completion reply")
	}
	cand, err := extract.First(reply, extract.ReplyPatterns)
	if err != nil {
		return extract.Candidate{}, resolve.ErrNotFound
	}
	cand.Label = "reply"
	return cand, nil
}
