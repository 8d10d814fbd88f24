package service

import "github.com/primeops/primeops-api/internal/models"

// leadTransitions is the pipeline state machine: each stage maps to the set
// of stages it may move to. Admitted and Not Admitted have no successors.
var leadTransitions = map[models.LeadStatus]map[models.LeadStatus]bool{
	models.LeadStatusAssigned: {
		models.LeadStatusCounseling: true,
	},
	models.LeadStatusCounseling: {
		models.LeadStatusAdmitted:    true,
		models.LeadStatusInFollowUp:  true,
		models.LeadStatusNotAdmitted: true,
	},
	models.LeadStatusInFollowUp: {
		models.LeadStatusAdmitted:    true,
		models.LeadStatusNotAdmitted: true,
	},
}

// validTransitionTarget reports whether the status is one a caller may request.
func validTransitionTarget(status models.LeadStatus) bool {
	switch status {
	case models.LeadStatusCounseling, models.LeadStatusAdmitted, models.LeadStatusInFollowUp, models.LeadStatusNotAdmitted:
		return true
	}
	return false
}

// transitionAllowed is the pure legality check for a (from, to) pair. A lead
// already In Follow Up may "move" to In Follow Up again when a note is
// supplied; that records an additional follow-up without a status change and
// is the one exception to the table.
func transitionAllowed(from, to models.LeadStatus, hasNote bool) bool {
	if from == models.LeadStatusInFollowUp && to == models.LeadStatusInFollowUp {
		return hasNote
	}
	return leadTransitions[from][to]
}
