package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primeops/primeops-api/internal/models"
)

func TestTransitionAllowedTable(t *testing.T) {
	statuses := []models.LeadStatus{
		models.LeadStatusAssigned,
		models.LeadStatusCounseling,
		models.LeadStatusInFollowUp,
		models.LeadStatusAdmitted,
		models.LeadStatusNotAdmitted,
	}

	legal := map[[2]models.LeadStatus]bool{
		{models.LeadStatusAssigned, models.LeadStatusCounseling}:    true,
		{models.LeadStatusCounseling, models.LeadStatusAdmitted}:    true,
		{models.LeadStatusCounseling, models.LeadStatusInFollowUp}:  true,
		{models.LeadStatusCounseling, models.LeadStatusNotAdmitted}: true,
		{models.LeadStatusInFollowUp, models.LeadStatusAdmitted}:    true,
		{models.LeadStatusInFollowUp, models.LeadStatusNotAdmitted}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[[2]models.LeadStatus{from, to}]
			assert.Equalf(t, want, transitionAllowed(from, to, false),
				"transition %s -> %s without note", from, to)
		}
	}
}

func TestTransitionAllowedFollowUpNote(t *testing.T) {
	// Re-entering In Follow Up is only legal when a note accompanies it.
	assert.False(t, transitionAllowed(models.LeadStatusInFollowUp, models.LeadStatusInFollowUp, false))
	assert.True(t, transitionAllowed(models.LeadStatusInFollowUp, models.LeadStatusInFollowUp, true))
}

func TestTerminalStatusesHaveNoSuccessors(t *testing.T) {
	targets := []models.LeadStatus{
		models.LeadStatusAssigned,
		models.LeadStatusCounseling,
		models.LeadStatusInFollowUp,
		models.LeadStatusAdmitted,
		models.LeadStatusNotAdmitted,
	}
	for _, terminal := range []models.LeadStatus{models.LeadStatusAdmitted, models.LeadStatusNotAdmitted} {
		for _, to := range targets {
			assert.Falsef(t, transitionAllowed(terminal, to, true), "terminal %s must not move to %s", terminal, to)
		}
	}
}

func TestValidTransitionTarget(t *testing.T) {
	assert.True(t, validTransitionTarget(models.LeadStatusCounseling))
	assert.True(t, validTransitionTarget(models.LeadStatusAdmitted))
	assert.True(t, validTransitionTarget(models.LeadStatusInFollowUp))
	assert.True(t, validTransitionTarget(models.LeadStatusNotAdmitted))

	assert.False(t, validTransitionTarget(models.LeadStatusAssigned))
	assert.False(t, validTransitionTarget(models.LeadStatus("Enrolled")))
	assert.False(t, validTransitionTarget(models.LeadStatus("")))
}
