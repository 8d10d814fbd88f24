package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
	"github.com/primeops/primeops-api/pkg/export"
	"github.com/primeops/primeops-api/pkg/jobs"
	"github.com/primeops/primeops-api/pkg/storage"
)

type summarySource interface {
	Summary(ctx context.Context, from, to *time.Time) (*models.FinanceSummary, error)
}

type leadSource interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, *models.Pagination, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ReportConfig tunes report generation.
type ReportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Workers   int
}

// CreateReportRequest describes an export job request.
type CreateReportRequest struct {
	Type   string     `json:"type" validate:"required"`
	Format string     `json:"format"`
	From   *time.Time `json:"from"`
	To     *time.Time `json:"to"`
}

// ReportService generates downloadable reports in the background. Jobs are
// tracked in memory and the rendered files are served through signed tokens.
type ReportService struct {
	finance summarySource
	leads   leadSource
	storage fileStorage
	signer  *storage.SignedURLSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	queue   *jobs.Queue
	logger  *zap.Logger
	cfg     ReportConfig

	mu      sync.RWMutex
	tracked map[string]*models.ReportJob
}

// NewReportService constructs a ReportService. Start must be called before
// jobs can be enqueued.
func NewReportService(finance summarySource, leads leadSource, store fileStorage, signer *storage.SignedURLSigner, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	s := &ReportService{
		finance: finance,
		leads:   leads,
		storage: store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		cfg:     cfg,
		tracked: make(map[string]*models.ReportJob),
	}
	s.queue = jobs.NewQueue("reports", s.process, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Create enqueues a report job for background rendering.
func (s *ReportService) Create(ctx context.Context, actor *models.JWTClaims, req CreateReportRequest) (*models.ReportJob, error) {
	reportType := models.ReportType(req.Type)
	if !reportType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", req.Type))
	}
	format := models.ReportFormat(req.Format)
	if req.Format == "" {
		format = models.ReportFormatCSV
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report format %q", req.Format))
	}

	job := &models.ReportJob{
		ID:          uuid.NewString(),
		Type:        reportType,
		Status:      models.ReportStatusQueued,
		RequestedBy: actor.UserID,
		Params:      models.ReportParams{From: req.From, To: req.To, Format: format},
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.tracked[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(reportType)}); err != nil {
		s.mu.Lock()
		delete(s.tracked, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	return s.snapshot(job.ID), nil
}

// Get returns the current state of a report job.
func (s *ReportService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.ReportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if job.RequestedBy != actor.UserID && !actor.Role.IsManagement() {
		return nil, appErrors.ErrForbidden
	}
	return job, nil
}

// Open resolves a signed download token to the stored file.
func (s *ReportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report file no longer available")
	}
	contentType := "text/csv"
	if strings.HasSuffix(relPath, ".pdf") {
		contentType = "application/pdf"
	}
	return file, contentType, nil
}

// Cleanup removes rendered files older than the result TTL.
func (s *ReportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("report files removed", zap.Int("count", len(deleted)))
	}
}

func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	tracked := s.update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusProcessing
	})
	if tracked == nil {
		return fmt.Errorf("report %s not tracked", job.ID)
	}

	dataset, title, err := s.buildDataset(ctx, tracked)
	if err == nil {
		err = s.render(tracked, dataset, title)
	}
	if err != nil {
		s.update(job.ID, func(j *models.ReportJob) {
			j.Status = models.ReportStatusFailed
			j.Error = err.Error()
		})
		return err
	}
	return nil
}

func (s *ReportService) render(job *models.ReportJob, dataset export.Dataset, title string) error {
	var payload []byte
	var err error
	switch job.Params.Format {
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	filename := fmt.Sprintf("%s/%s-%s.%s", time.Now().UTC().Format("2006-01-02"), job.Type, job.ID, job.Params.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return fmt.Errorf("sign report url: %w", err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	url := fmt.Sprintf("%s/export/%s", prefix, token)

	now := time.Now().UTC()
	s.update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusCompleted
		j.FilePath = relPath
		j.DownloadURL = url
		j.ExpiresAt = &expiresAt
		j.CompletedAt = &now
	})
	return nil
}

func (s *ReportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeFinancialSummary:
		return s.financialDataset(ctx, job)
	case models.ReportTypeLeadPipeline:
		return s.pipelineDataset(ctx)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ReportService) financialDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	summary, err := s.finance.Summary(ctx, job.Params.From, job.Params.To)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{Headers: []string{"Metric", "Amount"}}
	dataset.Rows = append(dataset.Rows,
		map[string]string{"Metric": "Total Income", "Amount": formatAmount(summary.TotalIncome)},
		map[string]string{"Metric": "Total Expense", "Amount": formatAmount(summary.TotalExpense)},
		map[string]string{"Metric": "Profit", "Amount": formatAmount(summary.Profit)},
	)
	return dataset, "Financial Summary", nil
}

func (s *ReportService) pipelineDataset(ctx context.Context) (export.Dataset, string, error) {
	const pageSize = 100
	var all []models.LeadDetail
	for page := 1; ; page++ {
		leads, _, err := s.leads.List(ctx, models.LeadFilter{Page: page, PageSize: pageSize})
		if err != nil {
			return export.Dataset{}, "", err
		}
		all = append(all, leads...)
		if len(leads) < pageSize {
			break
		}
	}
	dataset := export.Dataset{Headers: []string{"Lead ID", "Name", "Status", "Source", "Assigned To"}}
	for _, lead := range all {
		assigned := ""
		if lead.AssignedToUser != nil {
			assigned = lead.AssignedToUser.Name
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Lead ID":     lead.LeadID,
			"Name":        lead.Name,
			"Status":      string(lead.Status),
			"Source":      string(lead.Source),
			"Assigned To": assigned,
		})
	}
	return dataset, "Lead Pipeline", nil
}

func (s *ReportService) snapshot(id string) *models.ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.tracked[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ReportService) update(id string, fn func(*models.ReportJob)) *models.ReportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.tracked[id]
	if !ok {
		return nil
	}
	fn(job)
	copied := *job
	return &copied
}
