package models

import "time"

// LeadStatus represents the pipeline stage of a lead.
type LeadStatus string

// Pipeline statuses. Assigned is the initial stage; Admitted and Not Admitted
// are terminal for the transition function.
const (
	LeadStatusAssigned    LeadStatus = "Assigned"
	LeadStatusCounseling  LeadStatus = "Counseling"
	LeadStatusInFollowUp  LeadStatus = "In Follow Up"
	LeadStatusAdmitted    LeadStatus = "Admitted"
	LeadStatusNotAdmitted LeadStatus = "Not Admitted"
	LeadStatusInterested  LeadStatus = "Interested"
)

// LeadSource identifies the acquisition channel of a lead.
type LeadSource string

const (
	SourceMeta     LeadSource = "Meta Lead"
	SourceLinkedIn LeadSource = "LinkedIn Lead"
	SourceManual   LeadSource = "Manually Generated Lead"
	SourceOther    LeadSource = "Others"
)

// Valid reports whether the source is a known channel.
func (s LeadSource) Valid() bool {
	switch s {
	case SourceMeta, SourceLinkedIn, SourceManual, SourceOther:
		return true
	}
	return false
}

// Lead is a prospective student tracked through the admissions pipeline.
type Lead struct {
	ID               string     `db:"id" json:"id"`
	LeadID           string     `db:"lead_id" json:"lead_id"`
	Name             string     `db:"name" json:"name"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Email            *string    `db:"email" json:"email,omitempty"`
	InterestedCourse string     `db:"interested_course" json:"interested_course"`
	Source           LeadSource `db:"source" json:"source"`
	Status           LeadStatus `db:"status" json:"status"`
	AssignedTo       *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	AssignedBy       *string    `db:"assigned_by" json:"assigned_by,omitempty"`
	CounselingAt     *time.Time `db:"counseling_at" json:"counseling_at,omitempty"`
	AdmittedAt       *time.Time `db:"admitted_at" json:"admitted_at,omitempty"`
	AdmittedToCourse *string    `db:"admitted_to_course" json:"admitted_to_course,omitempty"`
	AdmittedToBatch  *string    `db:"admitted_to_batch" json:"admitted_to_batch,omitempty"`
	NextFollowUpDate *time.Time `db:"next_follow_up_date" json:"next_follow_up_date,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// FollowUp is one append-only entry in a lead's follow-up history.
type FollowUp struct {
	ID      string    `db:"id" json:"id"`
	LeadID  string    `db:"lead_id" json:"-"`
	Note    string    `db:"note" json:"note"`
	NotedAt time.Time `db:"noted_at" json:"at"`
	NotedBy string    `db:"noted_by" json:"-"`
}

// FollowUpDetail resolves the author to a display-safe projection.
type FollowUpDetail struct {
	FollowUp
	By UserRef `json:"by"`
}

// LeadDetail enriches a Lead with resolved user references and history.
type LeadDetail struct {
	Lead
	AssignedToUser *UserRef         `json:"assigned_to_user,omitempty"`
	AssignedByUser *UserRef         `json:"assigned_by_user,omitempty"`
	FollowUps      []FollowUpDetail `json:"follow_ups"`
}

// LeadFilter provides filters for listing leads.
type LeadFilter struct {
	Status     LeadStatus
	AssignedTo string
	Source     LeadSource
	Search     string
	Page       int
	PageSize   int
}

// BulkImportResult reports the outcome of a best-effort CSV ingestion.
type BulkImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
