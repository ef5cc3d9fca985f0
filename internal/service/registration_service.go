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

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type registrationRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Exists(ctx context.Context, studentID, courseID string, semesterID int) (bool, error)
	Create(ctx context.Context, registration *models.Registration) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error
	CountConfirmed(ctx context.Context, studentID string, semesterID int) (*models.ConfirmationCount, error)
	FinalizeAll(ctx context.Context, studentID string, semesterID int) error
	Summary(ctx context.Context, studentID string, semesterID int) (*models.RegistrationSummary, error)
}

type courseSource interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	UnmetPrerequisites(ctx context.Context, studentID, courseID string) ([]string, error)
}

type tuitionCalculator interface {
	CalculateTuitionFee(ctx context.Context, studentID string, semesterID int) (*models.FeeResult, error)
	CheckCreditLimit(ctx context.Context, studentID string, semesterID int) (*models.CreditLimitResult, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RegisterCourseRequest describes a course registration request.
type RegisterCourseRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	SemesterID int    `json:"semester_id" validate:"required"`
}

// UpdateRegistrationStatusRequest confirms or cancels a registration.
type UpdateRegistrationStatusRequest struct {
	Status models.RegistrationStatus `json:"status" validate:"required,oneof=Confirmed Cancelled"`
}

// FinalizeRequest triggers finalize-and-bill for a student's semester.
type FinalizeRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	SemesterID int    `json:"semester_id" validate:"required"`
}

// RegistrationService orchestrates the registration lifecycle and gates
// finalization on full confirmation.
type RegistrationService struct {
	repo      registrationRepository
	students  studentSource
	courses   courseSource
	semesters semesterSource
	tuition   tuitionCalculator
	cache     summaryCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(repo registrationRepository, students studentSource, courses courseSource, semesters semesterSource, tuition tuitionCalculator, cache summaryCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &RegistrationService{repo: repo, students: students, courses: courses, semesters: semesters, tuition: tuition, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns registrations with pagination metadata.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, *models.Pagination, error) {
	registrations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return registrations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Register enrolls a student in a course for a semester.
func (s *RegistrationService) Register(ctx context.Context, req RegisterCourseRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	semester, err := s.semesters.FindByID(ctx, req.SemesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	if semester.RegistrationDeadline != nil && time.Now().After(*semester.RegistrationDeadline) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration period has ended")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.CourseID, req.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already registered for semester")
	}

	missing, err := s.courses.UnmetPrerequisites(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisites")
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrPrerequisiteNotMet, fmt.Sprintf("prerequisite courses not completed: %s", strings.Join(missing, ", ")))
	}

	limit, err := s.tuition.CheckCreditLimit(ctx, req.StudentID, req.SemesterID)
	if err != nil {
		return nil, err
	}
	if !limit.OK {
		return nil, (&appErrors.CreditLimitError{MinCredits: limit.MinCredits, MaxCredits: limit.MaxCredits, TotalCredits: limit.TotalCredits}).AsError()
	}

	registration := &models.Registration{
		StudentID:        req.StudentID,
		CourseID:         req.CourseID,
		SemesterID:       req.SemesterID,
		RegistrationDate: time.Now().UTC(),
		Status:           models.RegistrationStatusRegistered,
	}
	if err := s.repo.Create(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	s.invalidateSummary(ctx, req.StudentID, req.SemesterID)
	return registration, nil
}

// UpdateStatus confirms or cancels a registration inside the edit period.
// Finalized registrations are immutable.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id string, req UpdateRegistrationStatusRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.Status == models.RegistrationStatusFinalized {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration already finalized")
	}

	semester, err := s.semesters.FindByID(ctx, registration.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	if semester.RegistrationDeadline != nil && time.Now().After(*semester.RegistrationDeadline) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "edit period has ended")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration status")
	}
	registration.Status = req.Status
	s.invalidateSummary(ctx, registration.StudentID, registration.SemesterID)
	return registration, nil
}

// AllConfirmed reports whether every registration of the student/semester is
// Confirmed. A student with zero registrations is never all-confirmed.
func (s *RegistrationService) AllConfirmed(ctx context.Context, studentID string, semesterID int) (bool, error) {
	count, err := s.repo.CountConfirmed(ctx, studentID, semesterID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	return count.Total > 0 && count.Confirmed == count.Total, nil
}

// Finalize locks a student's semester registrations and triggers the
// tuition computation. Every registration must be Confirmed first.
func (s *RegistrationService) Finalize(ctx context.Context, req FinalizeRequest) (*models.FeeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid finalize payload")
	}
	confirmed, err := s.AllConfirmed(ctx, req.StudentID, req.SemesterID)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "not all course registrations are confirmed")
	}

	if err := s.repo.FinalizeAll(ctx, req.StudentID, req.SemesterID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize registrations")
	}

	result, err := s.tuition.CalculateTuitionFee(ctx, req.StudentID, req.SemesterID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("registrations finalized",
		zap.String("student_id", req.StudentID),
		zap.Int("semester_id", req.SemesterID),
		zap.String("fee_id", result.FeeID))
	s.invalidateSummary(ctx, req.StudentID, req.SemesterID)
	return result, nil
}

// Summary returns the aggregated registration view, cached per student and
// semester.
func (s *RegistrationService) Summary(ctx context.Context, studentID string, semesterID int) (*models.RegistrationSummary, bool, error) {
	key := summaryCacheKey(studentID, semesterID)
	if s.cache != nil {
		var cached models.RegistrationSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, true, nil
		}
	}

	summary, err := s.repo.Summary(ctx, studentID, semesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no registrations for student and semester")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration summary")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache registration summary", zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *RegistrationService) invalidateSummary(ctx context.Context, studentID string, semesterID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, summaryCacheKey(studentID, semesterID)); err != nil {
		s.logger.Warn("failed to invalidate registration summary cache", zap.Error(err))
	}
}

func summaryCacheKey(studentID string, semesterID int) string {
	return fmt.Sprintf("registration:summary:%s:%d", studentID, semesterID)
}
