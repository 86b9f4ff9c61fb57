package inmemdb

import (
	"context"
	"sort"

	"github.com/edubridge/backend/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.prog}
}

func (repo *progressRepository) GetProgress(_ context.Context, studentID, courseID string) (progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[progressKey{studentID, courseID}]; ok {
		return *p, nil
	}
	return progress.Progress{}, progress.ErrNotFound
}

func (repo *progressRepository) CreateProgress(_ context.Context, p progress.Progress) (progress.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := progressKey{p.StudentID, p.CourseID}
	// at most one record per (student, course)
	if existing, ok := repo.db.table[key]; ok {
		return *existing, nil
	}
	repo.db.table[key] = &p
	return p, nil
}

func (repo *progressRepository) SaveProgress(_ context.Context, p progress.Progress) (progress.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := progressKey{p.StudentID, p.CourseID}
	orig, ok := repo.db.table[key]
	if !ok {
		return progress.Progress{}, progress.ErrNotFound
	}

	orig.VideoCompleted = p.VideoCompleted
	orig.WatchDuration = p.WatchDuration
	orig.QuizCompleted = p.QuizCompleted
	orig.QuizPassed = p.QuizPassed
	orig.QuizAttempts = p.QuizAttempts
	orig.Score = p.Score
	orig.CreditsEarned = p.CreditsEarned
	if p.CompletedAt != nil { // never unset a completion
		orig.CompletedAt = p.CompletedAt
	}
	orig.UpdatedAt = p.UpdatedAt
	return *orig, nil
}

func (repo *progressRepository) ListProgressByStudent(_ context.Context, studentID string) ([]progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var list []progress.Progress
	for _, p := range repo.db.table {
		if p.StudentID == studentID {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CourseID < list[j].CourseID })
	return list, nil
}

func (repo *progressRepository) CountPassedByStudent(_ context.Context, studentID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, p := range repo.db.table {
		if p.StudentID == studentID && p.CompletedAt != nil {
			count++
		}
	}
	return count, nil
}
