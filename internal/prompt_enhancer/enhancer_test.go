package prompt_enhancer

import (
	"testing"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRulesSectionEmpty(t *testing.T) {
	assert.Equal(t, "No specific compliance rules currently active.", RulesSection(nil))
}

func TestRulesSectionGroupsBySeverity(t *testing.T) {
	rules := []*models.Rule{
		{RuleText: "hard one", Severity: models.SeverityHard},
		{RuleText: "soft one", Severity: models.SeveritySoft},
		{RuleText: "hard two", Severity: models.SeverityHard},
	}

	section := RulesSection(rules)
	assert.Contains(t, section, "HARD RULES (VIOLATIONS WILL BLOCK CONTENT):\n1. hard one\n2. hard two\n")
	assert.Contains(t, section, "SOFT RULES (VIOLATIONS WILL BE FLAGGED):\n1. soft one\n")
}

func TestEnhanceIncludesPromptAndRules(t *testing.T) {
	rules := []*models.Rule{{RuleText: "hard one", Severity: models.SeverityHard}}

	enhanced := Enhance("Write a fund brochure", "", rules)
	assert.Contains(t, enhanced, "USER REQUEST:\nWrite a fund brochure")
	assert.Contains(t, enhanced, "hard one")
	assert.NotContains(t, enhanced, "ADDITIONAL CONTEXT")
	assert.Contains(t, enhanced, "Generate content now:")
}

func TestEnhanceWithContext(t *testing.T) {
	enhanced := Enhance("Write a summary", "fund fact sheet text", nil)
	assert.Contains(t, enhanced, "ADDITIONAL CONTEXT:\nfund fact sheet text")
}

func TestEnhanceWithFile(t *testing.T) {
	enhanced := EnhanceWithFile("Summarize this", "file body", "pdf", nil)
	assert.Contains(t, enhanced, "[Content from uploaded PDF file]:\nfile body")
}
