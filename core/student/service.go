package student

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrMobileExists = errors.New("a student with this mobile number already exists")
)

type (
	Repository interface {
		CheckMobileUniqueness(ctx context.Context, mobile string) error
		UsernameTaken(ctx context.Context, username string) (bool, error)
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByUsername(ctx context.Context, username string) (Student, error)
		// FindStudentsByMobile returns all students registered under the
		// mobile number; parents are linked to children this way.
		FindStudentsByMobile(ctx context.Context, mobile string) ([]Student, error)
		SetLastLogin(ctx context.Context, id string, t time.Time) (Student, error)
		SetPasswordHash(ctx context.Context, id string, hash []byte) error
		// AddCredits atomically increments the credit total and recomputes the
		// level in the same operation. Blind read-then-write is not acceptable:
		// concurrent quiz passes must not lose updates.
		AddCredits(ctx context.Context, id string, delta int) (total, level int, err error)
		// TopStudents returns students ordered by total credits descending,
		// optionally restricted to one standard.
		TopStudents(ctx context.Context, standard string, limit int) ([]Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkMobileUniqueness(mobile string) error {
	if err := svc.repo.CheckMobileUniqueness(context.Background(), mobile); err != nil {
		if err == ErrMobileExists {
			return core.NewValidationError(err, core.FieldError{Field: "mobile", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the student with a generated username.
func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	username, err := generateUsername(ns.Name, func(uname string) bool {
		taken, err := svc.repo.UsernameTaken(ctx, uname)
		return err == nil && taken
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "generating username")
	}

	std := Student{
		ID:        uuid.NewString(),
		Name:      ns.Name,
		Username:  username,
		Mobile:    ns.Mobile,
		Standard:  ns.Standard,
		IsActive:  true,
		Level:     1,
		CreatedAt: time.Now().UTC(),
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Student, error) {
	return svc.repo.GetStudentByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) FindByMobile(ctx context.Context, mobile string) ([]Student, error) {
	return svc.repo.FindStudentsByMobile(ctx, core.CleanString(mobile))
}

func (svc *Service) SetLastLogin(ctx context.Context, std Student) (Student, error) {
	return svc.repo.SetLastLogin(ctx, std.ID, time.Now().UTC())
}

// ResetPassword rehashes and stores a new password for the student.
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	std, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err := std.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPasswordHash(ctx, std.ID, std.PasswordHash)
}

// AddCredits awards credits and returns the new cumulative total and level.
func (svc *Service) AddCredits(ctx context.Context, id string, delta int) (int, int, error) {
	return svc.repo.AddCredits(ctx, id, delta)
}

func (svc *Service) TopStudents(ctx context.Context, standard string, limit int) ([]Student, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return svc.repo.TopStudents(ctx, core.CleanString(standard), limit)
}
