package rule_engine

import (
	"fmt"
	"strings"

	"backend/internal/models"

	"go.uber.org/zap"
)

// DefaultContextWindow is how many characters of content are kept on each
// side of a matched term.
const DefaultContextWindow = 100

// RuleKind says how a rule's text is matched against content.
type RuleKind int

const (
	// KindUnmatchable rules carry no recognizable directive or no
	// extractable terms and never produce violations.
	KindUnmatchable RuleKind = iota
	// KindProhibition rules are violated when a listed term appears.
	KindProhibition
	// KindObligation rules are violated when a listed term is absent.
	KindObligation
)

// Candidate is one detected rule violation, not yet persisted.
type Candidate struct {
	RuleID       int64               `json:"rule_id"`
	RuleText     string              `json:"rule_text"`
	Severity     models.RuleSeverity `json:"severity"`
	ViolatedText string              `json:"violated_text"`
	Context      string              `json:"context"`
}

// Detector runs keyword matching of content against active rules. Detection
// is deterministic: the same content and the same rule list always produce
// the same candidates in the same order.
type Detector struct {
	extractor     TermExtractor
	contextWindow int
	logger        *zap.Logger
}

func NewDetector(extractor TermExtractor, contextWindow int, logger *zap.Logger) *Detector {
	if contextWindow <= 0 {
		contextWindow = DefaultContextWindow
	}
	return &Detector{extractor: extractor, contextWindow: contextWindow, logger: logger}
}

// Classify decides how a rule is matched. Prohibition markers win when a rule
// text carries both kinds.
func Classify(ruleText string) RuleKind {
	lower := strings.ToLower(ruleText)
	switch {
	case strings.Contains(lower, "must not") || strings.Contains(lower, "prohibited"):
		return KindProhibition
	case strings.Contains(lower, "must include") || strings.Contains(lower, "required"):
		return KindObligation
	default:
		return KindUnmatchable
	}
}

// Detect checks content against every rule in order and returns at most one
// candidate per rule. Empty or whitespace-only content yields no candidates.
func (d *Detector) Detect(content string, rules []*models.Rule) []Candidate {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var candidates []Candidate
	for _, rule := range rules {
		if c := d.checkRule(content, rule); c != nil {
			candidates = append(candidates, *c)
		}
	}

	d.logger.Info("violation detection finished",
		zap.Int("rules", len(rules)),
		zap.Int("violations", len(candidates)))
	return candidates
}

func (d *Detector) checkRule(content string, rule *models.Rule) *Candidate {
	contentLower := strings.ToLower(content)

	switch Classify(rule.RuleText) {
	case KindProhibition:
		for _, term := range d.extractor.ProhibitedTerms(rule.RuleText) {
			if strings.Contains(contentLower, strings.ToLower(term)) {
				return &Candidate{
					RuleID:       rule.ID,
					RuleText:     rule.RuleText,
					Severity:     rule.Severity,
					ViolatedText: d.extractContext(content, term),
					Context:      fmt.Sprintf("Prohibited term '%s' found in content", term),
				}
			}
		}
	case KindObligation:
		for _, term := range d.extractor.RequiredTerms(rule.RuleText) {
			if !strings.Contains(contentLower, strings.ToLower(term)) {
				return &Candidate{
					RuleID:       rule.ID,
					RuleText:     rule.RuleText,
					Severity:     rule.Severity,
					ViolatedText: "",
					Context:      fmt.Sprintf("Required term '%s' missing from content", term),
				}
			}
		}
	}

	return nil
}

func (d *Detector) extractContext(content, term string) string {
	pos := strings.Index(strings.ToLower(content), strings.ToLower(term))
	if pos == -1 {
		return term
	}

	start := pos - d.contextWindow
	if start < 0 {
		start = 0
	}
	end := pos + len(term) + d.contextWindow
	if end > len(content) {
		end = len(content)
	}

	extract := content[start:end]
	if start > 0 {
		extract = "..." + extract
	}
	if end < len(content) {
		extract = extract + "..."
	}
	return extract
}
