package models

import "time"

// IncomeRefType marks the origin of an income ledger entry.
type IncomeRefType string

const (
	IncomeRefAdmissionFee IncomeRefType = "AdmissionFee"
	IncomeRefManual       IncomeRefType = "Manual"
)

// Income is a financial ledger entry. At most one row may reference a given
// admission fee; the (ref_type, ref_id) pair is unique in the store.
type Income struct {
	ID        string        `db:"id" json:"id"`
	Date      time.Time     `db:"date" json:"date"`
	Source    string        `db:"source" json:"source"`
	Amount    float64       `db:"amount" json:"amount"`
	RefType   IncomeRefType `db:"ref_type" json:"ref_type"`
	RefID     *string       `db:"ref_id" json:"ref_id,omitempty"`
	AddedBy   string        `db:"added_by" json:"added_by"`
	Note      string        `db:"note" json:"note"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Expense is a cost ledger entry.
type Expense struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Purpose   string    `db:"purpose" json:"purpose"`
	Amount    float64   `db:"amount" json:"amount"`
	AddedBy   string    `db:"added_by" json:"added_by"`
	Note      string    `db:"note" json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DailyAmount is one day-bucketed point in a financial series.
type DailyAmount struct {
	Date   string  `db:"day" json:"date"`
	Amount float64 `db:"amount" json:"amount"`
}

// FinanceSummary aggregates income and expense over a reporting window.
type FinanceSummary struct {
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	TotalIncome   float64       `json:"total_income"`
	TotalExpense  float64       `json:"total_expense"`
	Profit        float64       `json:"profit"`
	IncomeSeries  []DailyAmount `json:"income_series"`
	ExpenseSeries []DailyAmount `json:"expense_series"`
}
