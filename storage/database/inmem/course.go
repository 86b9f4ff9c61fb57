package inmemdb

import (
	"context"
	"sort"

	"github.com/edubridge/backend/core/course"
)

type courseRepository struct {
	courses *courseTable
	quizzes *quizTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{courses: db.course, quizzes: db.quiz}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	repo.courses.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if c, ok := repo.courses.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) ListCoursesByStandard(_ context.Context, standard string) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	var courses []course.Course
	for _, c := range repo.courses.table {
		if c.Standard == standard {
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Order < courses[j].Order })
	return courses, nil
}

func (repo *courseRepository) CountCoursesByStandard(ctx context.Context, standard string) (int, error) {
	courses, err := repo.ListCoursesByStandard(ctx, standard)
	return len(courses), err
}

func (repo *courseRepository) CreateQuiz(_ context.Context, qz course.Quiz) (course.Quiz, error) {
	repo.quizzes.Lock()
	defer repo.quizzes.Unlock()

	repo.quizzes.table[qz.ID] = &qz
	return qz, nil
}

func (repo *courseRepository) GetQuizByID(_ context.Context, id string) (course.Quiz, error) {
	repo.quizzes.RLock()
	defer repo.quizzes.RUnlock()

	if qz, ok := repo.quizzes.table[id]; ok {
		return *qz, nil
	}
	return course.Quiz{}, course.ErrQuizNotFound
}

func (repo *courseRepository) GetQuizByCourseID(_ context.Context, courseID string) (course.Quiz, error) {
	repo.quizzes.RLock()
	defer repo.quizzes.RUnlock()

	for _, qz := range repo.quizzes.table {
		if qz.CourseID == courseID {
			return *qz, nil
		}
	}
	return course.Quiz{}, course.ErrQuizNotFound
}
