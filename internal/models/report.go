package models

import "time"

// ReportType identifies the dataset behind a report job.
type ReportType string

const (
	ReportTypeFinancialSummary ReportType = "financial_summary"
	ReportTypeLeadPipeline     ReportType = "lead_pipeline"
)

// Valid reports whether the report type is known.
func (t ReportType) Valid() bool {
	return t == ReportTypeFinancialSummary || t == ReportTypeLeadPipeline
}

// ReportFormat is the rendered file format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportStatus tracks the lifecycle of a queued report.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "Queued"
	ReportStatusProcessing ReportStatus = "Processing"
	ReportStatusCompleted  ReportStatus = "Completed"
	ReportStatusFailed     ReportStatus = "Failed"
)

// ReportParams narrows the dataset for a report job.
type ReportParams struct {
	From   *time.Time   `json:"from,omitempty"`
	To     *time.Time   `json:"to,omitempty"`
	Format ReportFormat `json:"format"`
}

// ReportJob is an asynchronous export request and its outcome.
type ReportJob struct {
	ID          string       `json:"id"`
	Type        ReportType   `json:"type"`
	Status      ReportStatus `json:"status"`
	RequestedBy string       `json:"requested_by"`
	Params      ReportParams `json:"params"`
	FilePath    string       `json:"-"`
	DownloadURL string       `json:"download_url,omitempty"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
