package models

import "time"

// Course is a reference-catalog entry leads may be admitted to.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Fee       float64   `db:"fee" json:"fee"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Batch is a cohort grouping admitted students are rostered into.
type Batch struct {
	ID        string     `db:"id" json:"id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// BatchStudent is one roster entry; a lead appears at most once per batch.
type BatchStudent struct {
	ID         string    `db:"id" json:"id"`
	BatchID    string    `db:"batch_id" json:"batch_id"`
	LeadID     string    `db:"lead_id" json:"lead_id"`
	AdmittedAt time.Time `db:"admitted_at" json:"admitted_at"`
}
