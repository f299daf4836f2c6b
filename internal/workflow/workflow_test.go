package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

func TestLeaveTransitions(t *testing.T) {
	assert.True(t, Leave.CanTransition("pending", "Approved"))
	assert.True(t, Leave.CanTransition("PENDING", "REJECTED"))
	assert.False(t, Leave.CanTransition("APPROVED", "REJECTED"))
	assert.True(t, Leave.IsTerminal("approved"))
	assert.True(t, Leave.IsTerminal("REJECTED"))
	assert.False(t, Leave.IsTerminal("PENDING"))
	assert.Equal(t, []string{"APPROVED", "PENDING", "REJECTED"}, Leave.States())
}

func TestComplaintTransitions(t *testing.T) {
	assert.Equal(t, "ACTIVE", Complaint.Initial())
	assert.True(t, Complaint.CanTransition("active", "closed"))
	assert.False(t, Complaint.CanTransition("RESOLVED", "CLOSED"))
	assert.True(t, Complaint.IsTerminal("RESOLVED"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Leave.Validate("PENDING", "APPROVED"))

	err := Leave.Validate("APPROVED", "REJECTED")
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), "leave already approved")

	err = Leave.Validate("PENDING", "CANCELLED")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = Leave.Validate("APPROVED", "PENDING")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	err = Complaint.Validate("RESOLVED", "CLOSED")
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	assert.NoError(t, Complaint.Validate("", "RESOLVED"))
}
