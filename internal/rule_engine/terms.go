package rule_engine

import (
	"regexp"
	"strings"
)

// TermExtractor pulls the matchable terms out of a rule's text.
type TermExtractor interface {
	ProhibitedTerms(ruleText string) []string
	RequiredTerms(ruleText string) []string
}

var quotedTermRe = regexp.MustCompile(`"([^"]*)"`)

// QuotedTermExtractor reads terms from double-quoted phrases in the rule
// text. For prohibition rules without quotes it falls back to the
// comma-separated list after "such as".
type QuotedTermExtractor struct{}

func NewQuotedTermExtractor() *QuotedTermExtractor {
	return &QuotedTermExtractor{}
}

func (e *QuotedTermExtractor) ProhibitedTerms(ruleText string) []string {
	if quoted := extractQuoted(ruleText); len(quoted) > 0 {
		return quoted
	}

	lower := strings.ToLower(ruleText)
	if idx := strings.Index(lower, "such as"); idx != -1 {
		tail := lower[idx+len("such as"):]
		parts := strings.Split(tail, ",")
		terms := make([]string, 0, len(parts))
		for _, p := range parts {
			term := strings.Trim(strings.TrimSpace(p), `"'`)
			if term != "" {
				terms = append(terms, term)
			}
		}
		return terms
	}

	return nil
}

func (e *QuotedTermExtractor) RequiredTerms(ruleText string) []string {
	return extractQuoted(ruleText)
}

func extractQuoted(ruleText string) []string {
	groups := quotedTermRe.FindAllStringSubmatch(ruleText, -1)
	if len(groups) == 0 {
		return nil
	}
	terms := make([]string, 0, len(groups))
	for _, g := range groups {
		terms = append(terms, g[1])
	}
	return terms
}
