package models

import "time"

// FeeStatus is the approval state of an admission fee. Pending is the only
// state a fee may leave; Approved and Rejected are terminal.
type FeeStatus string

const (
	FeeStatusPending  FeeStatus = "Pending"
	FeeStatusApproved FeeStatus = "Approved"
	FeeStatusRejected FeeStatus = "Rejected"
)

// PaymentMethod enumerates the accepted payment channels.
type PaymentMethod string

const (
	MethodBkash        PaymentMethod = "Bkash"
	MethodNagad        PaymentMethod = "Nagad"
	MethodRocket       PaymentMethod = "Rocket"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodCashOnHand   PaymentMethod = "Cash on Hand"
)

// Valid reports whether the method is an accepted channel.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBkash, MethodNagad, MethodRocket, MethodBankTransfer, MethodCashOnHand:
		return true
	}
	return false
}

// AdmissionFee is a fee-collection record submitted against an admitted lead.
type AdmissionFee struct {
	ID          string        `db:"id" json:"id"`
	LeadID      string        `db:"lead_id" json:"lead_id"`
	CourseName  string        `db:"course_name" json:"course_name"`
	Amount      float64       `db:"amount" json:"amount"`
	Method      PaymentMethod `db:"method" json:"method"`
	PaymentDate time.Time     `db:"payment_date" json:"payment_date"`
	Note        string        `db:"note" json:"note"`
	Status      FeeStatus     `db:"status" json:"status"`
	SubmittedBy string        `db:"submitted_by" json:"submitted_by"`
	DecidedBy   *string       `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// FeeDetail enriches a fee with lead context for list views.
type FeeDetail struct {
	AdmissionFee
	LeadRef    string     `db:"lead_ref" json:"lead_ref"`
	LeadName   string     `db:"lead_name" json:"lead_name"`
	LeadStatus LeadStatus `db:"lead_status" json:"lead_status"`
}

// FeeFilter provides filters for listing fees.
type FeeFilter struct {
	Status      FeeStatus
	SubmittedBy string
	Page        int
	PageSize    int
}
