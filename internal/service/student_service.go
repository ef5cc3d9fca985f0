package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type discountReader interface {
	GetDiscountByID(ctx context.Context, id int) (*models.Discount, error)
}

// StudentRequest is the create/update payload for a student.
type StudentRequest struct {
	StudentID      string     `json:"student_id" validate:"required"`
	FirstName      string     `json:"first_name" validate:"required"`
	LastName       string     `json:"last_name" validate:"required"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender"`
	Hometown       string     `json:"hometown"`
	DiscountID     *int       `json:"discount_id,omitempty"`
	ContactAddress string     `json:"contact_address"`
	ClassID        string     `json:"class_id" validate:"required"`
}

// StudentService manages the student roster.
type StudentService struct {
	repo      studentRepository
	discounts discountReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, discounts discountReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, discounts: discounts, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student with resolved discount info.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create persists a new student.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.checkDiscount(ctx, req.DiscountID); err != nil {
		return nil, err
	}
	student := req.toModel()
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return s.Get(ctx, student.ID)
}

// Update rewrites a student record.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.StudentDetail, error) {
	req.StudentID = id
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.checkDiscount(ctx, req.DiscountID); err != nil {
		return nil, err
	}
	affected, err := s.repo.Update(ctx, req.toModel())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return s.Get(ctx, id)
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

func (s *StudentService) checkDiscount(ctx context.Context, discountID *int) error {
	if discountID == nil {
		return nil
	}
	if _, err := s.discounts.GetDiscountByID(ctx, *discountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "discount not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discount")
	}
	return nil
}

func (r StudentRequest) toModel() *models.Student {
	return &models.Student{
		ID:             r.StudentID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		DateOfBirth:    r.DateOfBirth,
		Gender:         r.Gender,
		Hometown:       r.Hometown,
		DiscountID:     r.DiscountID,
		ContactAddress: r.ContactAddress,
		ClassID:        r.ClassID,
	}
}
