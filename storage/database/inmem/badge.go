package inmemdb

import (
	"context"
	"sort"

	"github.com/edubridge/backend/core/badge"
)

type badgeRepository struct {
	db *badgeTable
}

var _ badge.Repository = (*badgeRepository)(nil) // interface compliance check

func NewBadgeRepository(db *DB) badge.Repository {
	return &badgeRepository{db: db.badge}
}

func (repo *badgeRepository) CreateBadge(_ context.Context, b badge.Badge) (badge.Badge, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *badgeRepository) QueryAllBadges(_ context.Context) ([]badge.Badge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	badges := make([]badge.Badge, 0, len(repo.db.table))
	for _, b := range repo.db.table {
		badges = append(badges, *b)
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].Name < badges[j].Name })
	return badges, nil
}

func (repo *badgeRepository) HasStudentBadge(_ context.Context, studentID, badgeID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.earned[earnedKey{studentID, badgeID}]
	return ok, nil
}

func (repo *badgeRepository) CreateStudentBadge(_ context.Context, sb badge.StudentBadge) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := earnedKey{sb.StudentID, sb.BadgeID}
	if _, ok := repo.db.earned[key]; ok {
		return nil // unique per (student, badge); first award wins
	}
	repo.db.earned[key] = &sb
	return nil
}

func (repo *badgeRepository) QueryStudentBadges(_ context.Context, studentID string) ([]badge.StudentBadge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var earned []badge.StudentBadge
	for _, sb := range repo.db.earned {
		if sb.StudentID == studentID {
			earned = append(earned, *sb)
		}
	}
	sort.Slice(earned, func(i, j int) bool { return earned[i].EarnedAt.Before(earned[j].EarnedAt) })
	return earned, nil
}

func (repo *badgeRepository) CountStudentBadges(_ context.Context, studentID string) (int, error) {
	earned, err := repo.QueryStudentBadges(context.Background(), studentID)
	return len(earned), err
}
