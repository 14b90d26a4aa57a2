package rule_engine

import (
	"fmt"
	"strings"

	"backend/internal/models"
)

// Decision is the outcome of applying enforcement policy to a set of
// detected violations.
type Decision struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Decide applies the enforcement policy: any violation of a hard rule
// rejects the content; soft violations alone never do.
func Decide(candidates []Candidate) Decision {
	var hard []Candidate
	for _, c := range candidates {
		if c.Severity == models.SeverityHard {
			hard = append(hard, c)
		}
	}

	if len(hard) == 0 {
		return Decision{Approved: true, Reason: "No HARD rule violations"}
	}

	var b strings.Builder
	b.WriteString("Content BLOCKED due to HARD rule violations:")
	for _, c := range hard {
		fmt.Fprintf(&b, "\n- %s: %s", c.RuleText, c.Context)
	}
	return Decision{Approved: false, Reason: b.String()}
}

// AnnotateSoft renders soft violations as advisory annotations attached to
// approved content.
func AnnotateSoft(candidates []Candidate) string {
	var soft []Candidate
	for _, c := range candidates {
		if c.Severity == models.SeveritySoft {
			soft = append(soft, c)
		}
	}

	if len(soft) == 0 {
		return "No SOFT rule violations"
	}

	lines := []string{"SOFT RULE VIOLATIONS (Content approved with warnings):"}
	for _, c := range soft {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.RuleText, c.Context))
	}
	return strings.Join(lines, "\n")
}
