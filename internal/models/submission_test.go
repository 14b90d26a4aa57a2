package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionStatusTransitions(t *testing.T) {
	cases := []struct {
		from    SubmissionStatus
		to      SubmissionStatus
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusApproved, false},
		{StatusPending, StatusRejected, false},
		{StatusProcessing, StatusApproved, true},
		{StatusProcessing, StatusRejected, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusProcessing, false},
		{StatusRejected, StatusApproved, false},
		{StatusFailed, StatusProcessing, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestSubmissionStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestRuleSeverityValid(t *testing.T) {
	assert.True(t, SeverityHard.Valid())
	assert.True(t, SeveritySoft.Valid())
	assert.False(t, RuleSeverity("medium").Valid())
	assert.False(t, RuleSeverity("").Valid())
}
