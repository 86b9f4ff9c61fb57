package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

const progressCols = `progress_id, student_id, course_id, video_completed, watch_duration,
	quiz_completed, quiz_passed, quiz_attempts, score, credits_earned, completed_at, updated_at`

func (repo *progressRepository) GetProgress(ctx context.Context, studentID, courseID string) (progress.Progress, error) {
	var p progress.Progress
	q := `SELECT ` + progressCols + ` FROM progress WHERE student_id = $1 AND course_id = $2`
	if err := repo.db.GetContext(ctx, &p, q, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return progress.Progress{}, progress.ErrNotFound
		}
		return progress.Progress{}, errors.Wrap(err, "getting progress")
	}
	return p, nil
}

// CreateProgress relies on the (student_id, course_id) unique constraint: a
// concurrent insert loses gracefully and the existing row is returned.
func (repo *progressRepository) CreateProgress(ctx context.Context, p progress.Progress) (progress.Progress, error) {
	q := `INSERT INTO progress (progress_id, student_id, course_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, course_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, p.ID, p.StudentID, p.CourseID, p.UpdatedAt); err != nil {
		return progress.Progress{}, errors.Wrap(err, "inserting progress")
	}
	return repo.GetProgress(ctx, p.StudentID, p.CourseID)
}

// SaveProgress never unsets completed_at: COALESCE keeps the earliest
// completion timestamp once achieved.
func (repo *progressRepository) SaveProgress(ctx context.Context, p progress.Progress) (progress.Progress, error) {
	q := `UPDATE progress
		SET video_completed = $3,
			watch_duration = $4,
			quiz_completed = $5,
			quiz_passed = $6,
			quiz_attempts = $7,
			score = $8,
			credits_earned = $9,
			completed_at = COALESCE(completed_at, $10),
			updated_at = $11
		WHERE student_id = $1 AND course_id = $2`
	res, err := repo.db.ExecContext(ctx, q,
		p.StudentID, p.CourseID, p.VideoCompleted, p.WatchDuration,
		p.QuizCompleted, p.QuizPassed, p.QuizAttempts, p.Score, p.CreditsEarned,
		p.CompletedAt, p.UpdatedAt,
	)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "updating progress")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.Progress{}, progress.ErrNotFound
	}
	return repo.GetProgress(ctx, p.StudentID, p.CourseID)
}

func (repo *progressRepository) ListProgressByStudent(ctx context.Context, studentID string) ([]progress.Progress, error) {
	var list []progress.Progress
	q := `SELECT ` + progressCols + ` FROM progress WHERE student_id = $1 ORDER BY course_id`
	if err := repo.db.SelectContext(ctx, &list, q, studentID); err != nil {
		return nil, errors.Wrap(err, "listing progress")
	}
	return list, nil
}

func (repo *progressRepository) CountPassedByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM progress WHERE student_id = $1 AND completed_at IS NOT NULL`
	if err := repo.db.GetContext(ctx, &count, q, studentID); err != nil {
		return 0, errors.Wrap(err, "counting passed courses")
	}
	return count, nil
}
