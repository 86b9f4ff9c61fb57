package course

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound     = errors.New("course not found")
	ErrQuizNotFound = errors.New("quiz not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		ListCoursesByStandard(ctx context.Context, standard string) ([]Course, error)
		CountCoursesByStandard(ctx context.Context, standard string) (int, error)
		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		GetQuizByID(ctx context.Context, id string) (Quiz, error)
		GetQuizByCourseID(ctx context.Context, courseID string) (Quiz, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, c Course) (Course, error) {
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) ListByStandard(ctx context.Context, standard string) ([]Course, error) {
	return svc.repo.ListCoursesByStandard(ctx, standard)
}

func (svc *Service) CountByStandard(ctx context.Context, standard string) (int, error) {
	return svc.repo.CountCoursesByStandard(ctx, standard)
}

func (svc *Service) CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error) {
	return svc.repo.CreateQuiz(ctx, qz)
}

func (svc *Service) GetQuizByID(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuizByID(ctx, id)
}

func (svc *Service) GetQuizByCourseID(ctx context.Context, courseID string) (Quiz, error) {
	return svc.repo.GetQuizByCourseID(ctx, courseID)
}
