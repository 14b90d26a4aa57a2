package models

import "time"

// RuleSeverity controls enforcement: HARD rules block content on violation,
// SOFT rules only annotate.
type RuleSeverity string

const (
	SeverityHard RuleSeverity = "hard"
	SeveritySoft RuleSeverity = "soft"
)

func (s RuleSeverity) Valid() bool {
	return s == SeverityHard || s == SeveritySoft
}

// Rule is a human-authored compliance rule. Rules are the authoritative source
// for compliance enforcement; rule text is never generated by AI. Edits create
// a new row with version+1 and parent_rule_id pointing at the edited rule, and
// deletes only flip is_active. Within a version chain exactly one rule is
// active at a time.
type Rule struct {
	ID           int64        `db:"id" json:"id"`
	RuleText     string       `db:"rule_text" json:"rule_text"`
	Severity     RuleSeverity `db:"severity" json:"severity"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	Version      int          `db:"version" json:"version"`
	ParentRuleID *int64       `db:"parent_rule_id" json:"parent_rule_id,omitempty"`
	CreatedBy    int64        `db:"created_by" json:"created_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// RuleViolationCount is a per-rule violation tally for the admin analytics view.
type RuleViolationCount struct {
	RuleID         int64        `db:"rule_id" json:"rule_id"`
	RuleText       string       `db:"rule_text" json:"rule_text"`
	Severity       RuleSeverity `db:"severity" json:"severity"`
	ViolationCount int          `db:"violation_count" json:"violation_count"`
}
