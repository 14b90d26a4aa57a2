package models

import "time"

// SubmissionStatus is the submission state machine:
//
//	PENDING -> PROCESSING -> {APPROVED, REJECTED, FAILED}
//
// APPROVED, REJECTED and FAILED are terminal.
type SubmissionStatus string

const (
	StatusPending    SubmissionStatus = "pending"
	StatusProcessing SubmissionStatus = "processing"
	StatusApproved   SubmissionStatus = "approved"
	StatusRejected   SubmissionStatus = "rejected"
	StatusFailed     SubmissionStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusFailed
}

// CanTransitionTo reports whether the transition s -> next is legal.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusApproved || next == StatusRejected || next == StatusFailed
	default:
		return false
	}
}

// Submission is one content generation request. Status transitions are owned
// exclusively by the compliance checker; the text fields are written once
// before the check runs.
type Submission struct {
	ID               int64            `db:"id" json:"id"`
	UserID           int64            `db:"user_id" json:"user_id"`
	Prompt           string           `db:"prompt" json:"prompt"`
	GeneratedContent *string          `db:"generated_content" json:"generated_content,omitempty"`
	Status           SubmissionStatus `db:"status" json:"status"`
	ComplianceStatus *string          `db:"compliance_status" json:"compliance_status,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// SubmissionSummary is a submission row joined with its violation count for
// the admin listing.
type SubmissionSummary struct {
	ID               int64            `db:"id" json:"id"`
	UserID           int64            `db:"user_id" json:"user_id"`
	Prompt           string           `db:"prompt" json:"prompt"`
	Status           SubmissionStatus `db:"status" json:"status"`
	ComplianceStatus *string          `db:"compliance_status" json:"compliance_status,omitempty"`
	ViolationCount   int              `db:"violation_count" json:"violation_count"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}
