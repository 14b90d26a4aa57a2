package models

import "time"

// Violation is a concrete rule violation detected during a compliance check.
// Rows are immutable once written and are kept even after the originating
// rule is deactivated, as the historical audit record. Severity is a snapshot
// of the rule's severity at detection time.
type Violation struct {
	ID           int64        `db:"id" json:"id"`
	SubmissionID int64        `db:"submission_id" json:"submission_id"`
	RuleID       int64        `db:"rule_id" json:"rule_id"`
	Severity     RuleSeverity `db:"severity" json:"severity"`
	ViolatedText string       `db:"violated_text" json:"violated_text"`
	Context      string       `db:"context" json:"context"`
	DetectedAt   time.Time    `db:"detected_at" json:"detected_at"`
}

// ViolationDetail is a violation joined with its rule text and submitting user
// for the admin violations feed.
type ViolationDetail struct {
	ID           int64        `db:"id" json:"id"`
	SubmissionID int64        `db:"submission_id" json:"submission_id"`
	UserID       int64        `db:"user_id" json:"user_id"`
	RuleID       int64        `db:"rule_id" json:"rule_id"`
	RuleText     string       `db:"rule_text" json:"rule_text"`
	Severity     RuleSeverity `db:"severity" json:"severity"`
	ViolatedText string       `db:"violated_text" json:"violated_text"`
	Context      string       `db:"context" json:"context"`
	DetectedAt   time.Time    `db:"detected_at" json:"detected_at"`
}
