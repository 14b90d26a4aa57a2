package rule_engine

import (
	"strings"
	"testing"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDetector(window int) *Detector {
	return NewDetector(NewQuotedTermExtractor(), window, zap.NewNop())
}

func hardRule(id int64, text string) *models.Rule {
	return &models.Rule{ID: id, RuleText: text, Severity: models.SeverityHard, IsActive: true, Version: 1}
}

func softRule(id int64, text string) *models.Rule {
	return &models.Rule{ID: id, RuleText: text, Severity: models.SeveritySoft, IsActive: true, Version: 1}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindProhibition, Classify(`Content must not contain "guaranteed returns"`))
	assert.Equal(t, KindProhibition, Classify("Use of prohibited jargon is flagged"))
	assert.Equal(t, KindObligation, Classify(`Content must include "a disclaimer"`))
	assert.Equal(t, KindObligation, Classify(`A risk warning is required`))
	assert.Equal(t, KindUnmatchable, Classify("Maintain a professional tone"))

	// Prohibition markers win when both appear.
	assert.Equal(t, KindProhibition, Classify(`Content must not omit the required "disclaimer"`))
}

func TestDetectProhibitionHit(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{hardRule(1, `Content must not contain "guaranteed returns"`)}

	got := d.Detect("We offer GUARANTEED RETURNS on all plans.", rules)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].RuleID)
	assert.Equal(t, models.SeverityHard, got[0].Severity)
	assert.Equal(t, "Prohibited term 'guaranteed returns' found in content", got[0].Context)
	assert.Contains(t, got[0].ViolatedText, "GUARANTEED RETURNS")
}

func TestDetectProhibitionClean(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{hardRule(1, `Content must not contain "guaranteed returns"`)}

	assert.Empty(t, d.Detect("Returns vary with market conditions.", rules))
}

func TestDetectObligationMissing(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{hardRule(2, `Content must include "Past performance does not guarantee future results."`)}

	got := d.Detect("Our fund grew 12% last year.", rules)
	require.Len(t, got, 1)
	assert.Equal(t, "Required term 'Past performance does not guarantee future results.' missing from content", got[0].Context)
	assert.Empty(t, got[0].ViolatedText)
}

func TestDetectObligationPresent(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{hardRule(2, `Content must include "Past performance does not guarantee future results."`)}

	content := "Our fund grew 12% last year. Past performance does not guarantee future results."
	assert.Empty(t, d.Detect(content, rules))
}

func TestDetectFirstTermOnlyPerRule(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{hardRule(1, `Content must not contain "foo" or "bar"`)}

	got := d.Detect("this has foo and also bar", rules)
	require.Len(t, got, 1)
	assert.Equal(t, "Prohibited term 'foo' found in content", got[0].Context)
}

func TestDetectEmptyContent(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{hardRule(2, `Content must include "disclaimer"`)}

	assert.Empty(t, d.Detect("", rules))
	assert.Empty(t, d.Detect("   \n\t", rules))
}

func TestDetectUnmatchableRule(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{softRule(3, "Maintain a professional tone throughout")}

	assert.Empty(t, d.Detect("yo this content is super casual lol", rules))
}

func TestDetectDeterministicOrder(t *testing.T) {
	d := newTestDetector(100)
	rules := []*models.Rule{
		hardRule(1, `Content must not contain "foo"`),
		softRule(2, `Content must not contain "bar"`),
		hardRule(3, `Content must include "baz"`),
	}
	content := "foo and bar but nothing else"

	first := d.Detect(content, rules)
	require.Len(t, first, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, d.Detect(content, rules))
	}
	assert.Equal(t, int64(1), first[0].RuleID)
	assert.Equal(t, int64(2), first[1].RuleID)
	assert.Equal(t, int64(3), first[2].RuleID)
}

func TestExtractContextEllipses(t *testing.T) {
	d := newTestDetector(10)

	long := strings.Repeat("a", 50) + " TERM " + strings.Repeat("b", 50)
	got := d.extractContext(long, "TERM")
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Contains(t, got, "TERM")

	// Short content keeps no ellipses.
	assert.Equal(t, "has TERM in it", d.extractContext("has TERM in it", "TERM"))
}

func TestDecideHardBlocks(t *testing.T) {
	candidates := []Candidate{
		{RuleText: `Content must not contain "foo"`, Severity: models.SeverityHard, Context: "Prohibited term 'foo' found in content"},
		{RuleText: "soft rule", Severity: models.SeveritySoft, Context: "ctx"},
	}

	d := Decide(candidates)
	assert.False(t, d.Approved)
	assert.Equal(t,
		"Content BLOCKED due to HARD rule violations:\n- Content must not contain \"foo\": Prohibited term 'foo' found in content",
		d.Reason)
}

func TestDecideSoftOnlyApproves(t *testing.T) {
	candidates := []Candidate{
		{RuleText: "soft rule", Severity: models.SeveritySoft, Context: "ctx"},
	}

	d := Decide(candidates)
	assert.True(t, d.Approved)
	assert.Equal(t, "No HARD rule violations", d.Reason)
}

func TestDecideNoViolations(t *testing.T) {
	d := Decide(nil)
	assert.True(t, d.Approved)
	assert.Equal(t, "No HARD rule violations", d.Reason)
}

func TestAnnotateSoft(t *testing.T) {
	candidates := []Candidate{
		{RuleText: "hard rule", Severity: models.SeverityHard, Context: "hard ctx"},
		{RuleText: "soft rule", Severity: models.SeveritySoft, Context: "soft ctx"},
	}

	assert.Equal(t,
		"SOFT RULE VIOLATIONS (Content approved with warnings):\n- soft rule: soft ctx",
		AnnotateSoft(candidates))
	assert.Equal(t, "No SOFT rule violations", AnnotateSoft(nil))
}
