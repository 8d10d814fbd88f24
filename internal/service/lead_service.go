package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/primeops/primeops-api/internal/models"
	appErrors "github.com/primeops/primeops-api/pkg/errors"
)

type leadRepository interface {
	NextLeadID(ctx context.Context, year int) (string, error)
	Create(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	FindDetailByID(ctx context.Context, id string) (*models.LeadDetail, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, int, error)
	FindDuplicateSince(ctx context.Context, phone, email *string, since time.Time) (*models.Lead, error)
	Assign(ctx context.Context, id, assignedTo, assignedBy string) error
	ApplyTransition(ctx context.Context, lead *models.Lead, followUp *models.FollowUp, roster *models.BatchStudent) error
	ListFollowUps(ctx context.Context, leadID string) ([]models.FollowUpDetail, error)
}

type catalogReader interface {
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	FindBatchByID(ctx context.Context, id string) (*models.Batch, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateLeadRequest describes single lead intake.
type CreateLeadRequest struct {
	Name             string `json:"name" validate:"required"`
	Phone            string `json:"phone"`
	Email            string `json:"email" validate:"omitempty,email"`
	InterestedCourse string `json:"interested_course"`
	Source           string `json:"source"`
}

// AssignLeadRequest names the admission owner for a lead.
type AssignLeadRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required"`
}

// TransitionRequest describes a pipeline status change.
type TransitionRequest struct {
	Status           string     `json:"status" validate:"required"`
	Notes            string     `json:"notes"`
	CourseID         string     `json:"course_id"`
	BatchID          string     `json:"batch_id"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date"`
}

// LeadService orchestrates lead intake, assignment and the pipeline state
// machine.
type LeadService struct {
	repo         leadRepository
	catalog      catalogReader
	users        userReader
	cache        *CacheService
	dedupeWindow time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewLeadService constructs LeadService.
func NewLeadService(repo leadRepository, catalog catalogReader, users userReader, cache *CacheService, dedupeWindow time.Duration, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dedupeWindow <= 0 {
		dedupeWindow = 180 * 24 * time.Hour
	}
	return &LeadService{
		repo:         repo,
		catalog:      catalog,
		users:        users,
		cache:        cache,
		dedupeWindow: dedupeWindow,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a single lead on behalf of a digital marketing actor.
func (s *LeadService) Create(ctx context.Context, actor *models.JWTClaims, req CreateLeadRequest) (*models.LeadDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name required")
	}
	source := models.LeadSource(req.Source)
	if source == "" {
		source = models.SourceManual
	}
	if !source.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown lead source %q", req.Source))
	}

	phone := optional(strings.TrimSpace(req.Phone))
	email := optional(strings.ToLower(strings.TrimSpace(req.Email)))

	if err := s.checkDuplicate(ctx, phone, email); err != nil {
		return nil, err
	}

	now := s.now()
	leadID, err := s.repo.NextLeadID(ctx, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate lead id")
	}

	lead := &models.Lead{
		LeadID:           leadID,
		Name:             strings.TrimSpace(req.Name),
		Phone:            phone,
		Email:            email,
		InterestedCourse: req.InterestedCourse,
		Source:           source,
		Status:           models.LeadStatusAssigned,
		AssignedBy:       &actor.UserID,
		CreatedAt:        now,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lead")
	}
	s.invalidateLists(ctx)

	return s.loadDetail(ctx, lead.ID)
}

// BulkImport ingests a CSV payload best-effort: each row either creates a
// lead or bumps the skipped counter; there is no rollback of earlier rows.
func (s *LeadService) BulkImport(ctx context.Context, actor *models.JWTClaims, csvText string) (*models.BulkImportResult, error) {
	lines := splitLines(csvText)
	if len(lines) <= 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no data rows")
	}

	header := strings.Split(lines[0], ",")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	idx := map[string]int{}
	for _, col := range []string{"Name", "Phone", "Email", "InterestedCourse", "Source"} {
		idx[col] = indexOf(header, col)
		if idx[col] < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "headers must be Name,Phone,Email,InterestedCourse,Source")
		}
	}

	result := &models.BulkImportResult{}
	for _, line := range lines[1:] {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if strings.Join(parts, "") == "" {
			continue
		}

		name := field(parts, idx["Name"])
		if name == "" {
			result.Skipped++
			continue
		}
		phone := optional(field(parts, idx["Phone"]))
		email := optional(strings.ToLower(field(parts, idx["Email"])))

		if err := s.checkDuplicate(ctx, phone, email); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrDuplicate.Code {
				result.Skipped++
				continue
			}
			return nil, err
		}

		source := models.LeadSource(field(parts, idx["Source"]))
		if !source.Valid() {
			source = models.SourceOther
		}

		now := s.now()
		leadID, err := s.repo.NextLeadID(ctx, now.Year())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate lead id")
		}
		lead := &models.Lead{
			LeadID:           leadID,
			Name:             name,
			Phone:            phone,
			Email:            email,
			InterestedCourse: field(parts, idx["InterestedCourse"]),
			Source:           source,
			Status:           models.LeadStatusAssigned,
			AssignedBy:       &actor.UserID,
			CreatedAt:        now,
		}
		if err := s.repo.Create(ctx, lead); err != nil {
			s.logger.Warn("bulk import row failed", zap.String("name", name), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Created++
	}

	s.invalidateLists(ctx)
	return result, nil
}

// Assign hands a lead to an admission owner and resets its stage.
func (s *LeadService) Assign(ctx context.Context, actor *models.JWTClaims, leadID string, req AssignLeadRequest) (*models.LeadDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "assigned_to required")
	}
	if _, err := s.repo.FindByID(ctx, leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	assignee, err := s.users.FindByID(ctx, req.AssignedTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must be an Admission member")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee")
	}
	if assignee.Role != models.RoleAdmission {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must be an Admission member")
	}
	if err := s.repo.Assign(ctx, leadID, assignee.ID, actor.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign lead")
	}
	s.invalidateLists(ctx)
	return s.loadDetail(ctx, leadID)
}

// List returns leads matching the filter.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.LeadDetail, *models.Pagination, error) {
	cacheKey := fmt.Sprintf("leads:list:%s:%s:%s:%s:%d:%d",
		filter.Status, filter.AssignedTo, filter.Source, filter.Search, filter.Page, filter.PageSize)
	type cachedList struct {
		Leads      []models.LeadDetail `json:"leads"`
		Pagination *models.Pagination  `json:"pagination"`
	}
	if s.cache != nil {
		var cached cachedList
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached.Leads, cached.Pagination, nil
		}
	}

	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, cachedList{Leads: leads, Pagination: pagination}, 0)
	}
	return leads, pagination, nil
}

// ListForActor scopes the pipeline listing to the caller: admission users see
// only their own leads, management sees everything.
func (s *LeadService) ListForActor(ctx context.Context, actor *models.JWTClaims, filter models.LeadFilter) ([]models.LeadDetail, *models.Pagination, error) {
	switch {
	case actor.Role == models.RoleAdmission:
		filter.AssignedTo = actor.UserID
	case actor.Role.IsManagement():
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed")
	}
	return s.List(ctx, filter)
}

// Transition validates and applies a pipeline status change with its side
// effects. Validation runs to completion before anything is written.
func (s *LeadService) Transition(ctx context.Context, actor *models.JWTClaims, leadID string, req TransitionRequest) (*models.LeadDetail, error) {
	target := models.LeadStatus(req.Status)
	if !validTransitionTarget(target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "invalid target status")
	}

	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}

	if err := s.authorizeTransition(actor, lead); err != nil {
		return nil, err
	}

	note := strings.TrimSpace(req.Notes)
	if !transitionAllowed(lead.Status, target, note != "") {
		return nil, appErrors.Clone(appErrors.ErrBadTransition, fmt.Sprintf("cannot move %s -> %s", lead.Status, target))
	}

	followUp, roster := s.planSideEffects(ctx, lead, target, note, req, actor)
	lead.Status = target

	if err := s.repo.ApplyTransition(ctx, lead, followUp, roster); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
	}
	s.invalidateLists(ctx)

	return s.loadDetail(ctx, lead.ID)
}

// authorizeTransition enforces ownership: admission users act only on their
// own leads, Admin and SuperAdmin on any, every other role on none.
func (s *LeadService) authorizeTransition(actor *models.JWTClaims, lead *models.Lead) error {
	switch {
	case actor.Role == models.RoleAdmission:
		if lead.AssignedTo == nil || *lead.AssignedTo != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "cannot update unassigned lead")
		}
		return nil
	case actor.Role.IsManagement():
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed")
	}
}

// planSideEffects mutates the lead copy with the per-target side effects and
// returns the optional follow-up entry and batch roster entry to persist
// alongside the status write. Timestamps are set once and never overwritten.
func (s *LeadService) planSideEffects(ctx context.Context, lead *models.Lead, target models.LeadStatus, note string, req TransitionRequest, actor *models.JWTClaims) (*models.FollowUp, *models.BatchStudent) {
	now := s.now()
	var followUp *models.FollowUp
	var roster *models.BatchStudent

	switch target {
	case models.LeadStatusCounseling:
		if lead.CounselingAt == nil {
			lead.CounselingAt = &now
		}

	case models.LeadStatusAdmitted:
		if lead.AdmittedAt == nil {
			lead.AdmittedAt = &now
		}
		if req.CourseID != "" {
			lead.AdmittedToCourse = &req.CourseID
			if course, err := s.catalog.FindCourseByID(ctx, req.CourseID); err == nil {
				lead.InterestedCourse = course.Name
			} else {
				s.logger.Warn("course lookup failed, keeping interested course", zap.String("course_id", req.CourseID), zap.Error(err))
			}
		}
		if req.BatchID != "" {
			lead.AdmittedToBatch = &req.BatchID
			if _, err := s.catalog.FindBatchByID(ctx, req.BatchID); err == nil {
				roster = &models.BatchStudent{BatchID: req.BatchID, LeadID: lead.ID, AdmittedAt: now}
			} else {
				s.logger.Warn("batch lookup failed, skipping roster entry", zap.String("batch_id", req.BatchID), zap.Error(err))
			}
		}

	case models.LeadStatusInFollowUp:
		if note != "" {
			followUp = &models.FollowUp{LeadID: lead.ID, Note: note, NotedAt: now, NotedBy: actor.UserID}
		}
		if req.NextFollowUpDate != nil {
			lead.NextFollowUpDate = req.NextFollowUpDate
		}

	case models.LeadStatusNotAdmitted:
		if note != "" {
			followUp = &models.FollowUp{LeadID: lead.ID, Note: "Not Admitted: " + note, NotedAt: now, NotedBy: actor.UserID}
		}
	}

	return followUp, roster
}

func (s *LeadService) checkDuplicate(ctx context.Context, phone, email *string) error {
	since := s.now().Add(-s.dedupeWindow)
	if _, err := s.repo.FindDuplicateSince(ctx, phone, email, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
	}
	return appErrors.Clone(appErrors.ErrDuplicate, "duplicate phone/email in recent leads")
}

func (s *LeadService) loadDetail(ctx context.Context, id string) (*models.LeadDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead detail")
	}
	followUps, err := s.repo.ListFollowUps(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load follow ups")
	}
	detail.FollowUps = followUps
	return detail, nil
}

func (s *LeadService) invalidateLists(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "leads:*")
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

func field(parts []string, idx int) string {
	if idx < 0 || idx >= len(parts) {
		return ""
	}
	return parts[idx]
}
