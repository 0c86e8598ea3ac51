package extract

import (
	"errors"
	"regexp"
	"testing"
)

func TestFirstPatternPriorityBeatsPosition(t *testing.T) {
	// The second pattern's match appears earlier in the text, but the
	// first pattern still wins.
	patterns := []Pattern{
		{Re: regexp.MustCompile(`(?i)weighs\s*(\d+(?:\.\d+)?)\s*(kg|g)`), Label: "labeled"},
		{Re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|g)\b`), Label: "bare"},
	}
	text := "box of 3 kg capacity. The device weighs 250 g in total."
	c, err := First(text, patterns)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if c.Label != "labeled" || c.Value != 250 || c.Unit != "g" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestFirstNoMatch(t *testing.T) {
	_, err := First("a page with no weight statements at all", FullPagePatterns)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
}

func TestFirstFixedUnit(t *testing.T) {
	c, err := First("الوزن: 450 جرام", ArabicGramPatterns)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if c.Value != 450 || c.Unit != "g" || c.Label != "labeled" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestFirstArabicApproxBeatsBare(t *testing.T) {
	c, err := First("السعة 500 جرام والوزن حوالي 320 جرام", ArabicGramPatterns)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if c.Value != 320 || c.Label != "labeled-approx" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestFirstCanonicalizesLongUnits(t *testing.T) {
	c, err := First("the scale weighs in at 1.2 kilograms when boxed", SupportPatterns)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if c.Unit != "kg" || c.Value != 1.2 {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestFullPagePatternsNeedLabel(t *testing.T) {
	if _, err := First("rated for 20 kg of cargo", FullPagePatterns); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("unlabeled number should not match the fallback scan, got %v", err)
	}
	c, err := First("Item Weight : 1.2 kg extra text", FullPagePatterns)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if c.Value != 1.2 || c.Unit != "kg" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestValuePatternsOnStructuredCell(t *testing.T) {
	c, err := First("14.1 ounces (400 grams)", ValuePatterns)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if c.Value != 14.1 || c.Unit != "ounces" {
		t.Fatalf("first occurrence should win within a pattern: %+v", c)
	}
}
