package extract

import "regexp"

// ValuePatterns matches a bare "<number> <unit>" inside a structured
// candidate value, e.g. the cell next to an "Item Weight" table key.
var ValuePatterns = []Pattern{
	{Re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|g|lbs?|pounds?|oz|ounces?)\b`)},
}

// FullPagePatterns is the loose whole-document fallback. The label prefix
// keeps it anchored to weight statements rather than any stray number.
var FullPagePatterns = []Pattern{
	{
		Re:    regexp.MustCompile(`(?i)(?:item weight|product weight|shipping weight|net weight)[^\n]*?(\d+(?:\.\d*)?)\s*(kg|g|lbs?|pounds?|oz|ounces?)\b`),
		Label: "full-page",
	},
}

// SpecCellPatterns matches spec-sheet cell text on vendor product pages,
// which only ever states metric weights.
var SpecCellPatterns = []Pattern{
	{Re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|g)\b`)},
}

// SupportPatterns matches weight statements in support-article prose, where
// long-form unit spellings are common.
var SupportPatterns = []Pattern{
	{Re: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(kg|kilograms?|g|grams?)\b`)},
}

// ArabicGramPatterns covers the labeled gram statements found in the
// Arabic-language product bodies the catalog is bootstrapped from. Most to
// least specific; all are gram-denominated.
var ArabicGramPatterns = []Pattern{
	{Re: regexp.MustCompile(`الوزن[\s:]*حوالي\s*(\d+(?:\.\d+)?)\s*جرام`), Unit: "g", Label: "labeled-approx"},
	{Re: regexp.MustCompile(`الوزن[\s:]*(\d+(?:\.\d+)?)\s*جرام`), Unit: "g", Label: "labeled"},
	{Re: regexp.MustCompile(`وزنه[\s:]*(\d+(?:\.\d+)?)\s*جرام`), Unit: "g", Label: "labeled"},
	{Re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*جرام`), Unit: "g", Label: "bare"},
	{Re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g\b`), Unit: "g", Label: "bare"},
}

// ReplyPatterns parses the completion service's answer, which is asked for
// as a number followed by "g".
var ReplyPatterns = []Pattern{
	{Re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|g)\b`), Label: "reply"},
}
