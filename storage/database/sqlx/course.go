package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

const courseCols = `course_id, title, standard, subject, video_url,
	duration_minutes, credits, description, ordering, created_at`

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `INSERT INTO course (course_id, title, standard, subject, video_url,
			duration_minutes, credits, description, ordering, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		c.ID, c.Title, c.Standard, c.Subject, c.VideoURL,
		c.DurationMinutes, c.Credits, c.Description, c.Order, c.CreatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	q := `SELECT ` + courseCols + ` FROM course WHERE course_id = $1`
	if err := repo.db.GetContext(ctx, &c, q, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by id")
	}
	return c, nil
}

func (repo *courseRepository) ListCoursesByStandard(ctx context.Context, standard string) ([]course.Course, error) {
	var courses []course.Course
	q := `SELECT ` + courseCols + ` FROM course WHERE standard = $1 ORDER BY ordering`
	if err := repo.db.SelectContext(ctx, &courses, q, standard); err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	return courses, nil
}

func (repo *courseRepository) CountCoursesByStandard(ctx context.Context, standard string) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM course WHERE standard = $1`
	if err := repo.db.GetContext(ctx, &count, q, standard); err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	return count, nil
}

func (repo *courseRepository) CreateQuiz(ctx context.Context, qz course.Quiz) (course.Quiz, error) {
	questions, err := json.Marshal(qz.Questions)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "marshalling questions")
	}
	q := `INSERT INTO quiz (quiz_id, course_id, title, questions, passing_marks,
			passing_score, total_marks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = repo.db.ExecContext(ctx, q,
		qz.ID, qz.CourseID, qz.Title, questions, qz.PassingMarks,
		qz.PassingScore, qz.TotalMarks, qz.CreatedAt,
	)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return qz, nil
}

func (repo *courseRepository) GetQuizByID(ctx context.Context, id string) (course.Quiz, error) {
	var row quizRow
	q := `SELECT quiz_id, course_id, title, questions, passing_marks, passing_score,
			total_marks, created_at
		FROM quiz WHERE quiz_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Quiz{}, course.ErrQuizNotFound
		}
		return course.Quiz{}, errors.Wrap(err, "getting quiz by id")
	}
	return row.toQuiz()
}

func (repo *courseRepository) GetQuizByCourseID(ctx context.Context, courseID string) (course.Quiz, error) {
	var row quizRow
	q := `SELECT quiz_id, course_id, title, questions, passing_marks, passing_score,
			total_marks, created_at
		FROM quiz WHERE course_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, courseID); err != nil {
		if err == sql.ErrNoRows {
			return course.Quiz{}, course.ErrQuizNotFound
		}
		return course.Quiz{}, errors.Wrap(err, "getting quiz by course id")
	}
	return row.toQuiz()
}

// quizRow maps the questions jsonb column.
type quizRow struct {
	ID           string          `db:"quiz_id"`
	CourseID     string          `db:"course_id"`
	Title        string          `db:"title"`
	Questions    json.RawMessage `db:"questions"`
	PassingMarks *int            `db:"passing_marks"`
	PassingScore *int            `db:"passing_score"`
	TotalMarks   int             `db:"total_marks"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r quizRow) toQuiz() (course.Quiz, error) {
	qz := course.Quiz{
		ID:           r.ID,
		CourseID:     r.CourseID,
		Title:        r.Title,
		PassingMarks: r.PassingMarks,
		PassingScore: r.PassingScore,
		TotalMarks:   r.TotalMarks,
		CreatedAt:    r.CreatedAt,
	}
	if err := json.Unmarshal(r.Questions, &qz.Questions); err != nil {
		return course.Quiz{}, errors.Wrap(err, "unmarshalling questions")
	}
	return qz, nil
}
