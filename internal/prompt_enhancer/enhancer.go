package prompt_enhancer

import (
	"fmt"
	"strings"

	"backend/internal/models"
)

// RulesSection formats active rules for injection into a generation prompt so
// the model sees the same rules enforcement will apply.
func RulesSection(rules []*models.Rule) string {
	if len(rules) == 0 {
		return "No specific compliance rules currently active."
	}

	var hard, soft []*models.Rule
	for _, r := range rules {
		if r.Severity == models.SeverityHard {
			hard = append(hard, r)
		} else {
			soft = append(soft, r)
		}
	}

	var b strings.Builder
	b.WriteString("COMPLIANCE RULES (MUST BE ENFORCED):\n\n")

	if len(hard) > 0 {
		b.WriteString("HARD RULES (VIOLATIONS WILL BLOCK CONTENT):\n")
		for i, r := range hard {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r.RuleText)
		}
		b.WriteString("\n")
	}

	if len(soft) > 0 {
		b.WriteString("SOFT RULES (VIOLATIONS WILL BE FLAGGED):\n")
		for i, r := range soft {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r.RuleText)
		}
	}

	return b.String()
}

// Enhance turns a raw user prompt into a compliance-aware generation prompt.
// The optional context carries material from uploaded reference documents.
func Enhance(userPrompt, context string, rules []*models.Rule) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a compliance-first content generator for regulated financial/insurance environments.

%s

INSTRUCTIONS:
1. Generate content that strictly adheres to ALL compliance rules above
2. HARD rules are non-negotiable - any violation will result in content rejection
3. SOFT rules should be followed when possible - violations will be flagged
4. Maintain professional, clear, and legally sound language
5. If context is provided, incorporate it while ensuring compliance

USER REQUEST:
%s
`, RulesSection(rules), userPrompt)

	if context != "" {
		fmt.Fprintf(&b, "\n\nADDITIONAL CONTEXT:\n%s\n", context)
	}

	b.WriteString("\nIMPORTANT: Your response must be compliant with all HARD rules. Generate content now:\n")
	return b.String()
}

// EnhanceWithFile wraps uploaded file content as prompt context.
func EnhanceWithFile(userPrompt, fileContent, fileType string, rules []*models.Rule) string {
	context := fmt.Sprintf("[Content from uploaded %s file]:\n%s", strings.ToUpper(fileType), fileContent)
	return Enhance(userPrompt, context, rules)
}
