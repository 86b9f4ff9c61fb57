package sqlxrepos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/badge"
)

type badgeRepository struct {
	db *sqlx.DB
}

var _ badge.Repository = (*badgeRepository)(nil) // interface compliance check

func NewBadgeRepository(db *sqlx.DB) badge.Repository {
	return &badgeRepository{db: db}
}

func (repo *badgeRepository) CreateBadge(ctx context.Context, b badge.Badge) (badge.Badge, error) {
	criteria, err := json.Marshal(b.Criteria)
	if err != nil {
		return badge.Badge{}, errors.Wrap(err, "marshalling criteria")
	}
	q := `INSERT INTO badge (badge_id, name, description, icon, criteria, rarity)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, b.ID, b.Name, b.Description, b.Icon, criteria, b.Rarity); err != nil {
		return badge.Badge{}, errors.Wrap(err, "inserting badge")
	}
	return b, nil
}

func (repo *badgeRepository) QueryAllBadges(ctx context.Context) ([]badge.Badge, error) {
	var rows []badgeRow
	q := `SELECT badge_id, name, description, icon, criteria, rarity FROM badge ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying badges")
	}

	badges := make([]badge.Badge, 0, len(rows))
	for _, r := range rows {
		b, err := r.toBadge()
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, nil
}

func (repo *badgeRepository) HasStudentBadge(ctx context.Context, studentID, badgeID string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM student_badge WHERE student_id = $1 AND badge_id = $2)`
	if err := repo.db.GetContext(ctx, &exists, q, studentID, badgeID); err != nil {
		return false, errors.Wrap(err, "checking student badge")
	}
	return exists, nil
}

// CreateStudentBadge is idempotent via the (student_id, badge_id) primary
// key; a concurrent duplicate award is dropped, never doubled.
func (repo *badgeRepository) CreateStudentBadge(ctx context.Context, sb badge.StudentBadge) error {
	q := `INSERT INTO student_badge (student_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, badge_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, sb.StudentID, sb.BadgeID, sb.EarnedAt); err != nil {
		return errors.Wrap(err, "inserting student badge")
	}
	return nil
}

func (repo *badgeRepository) QueryStudentBadges(ctx context.Context, studentID string) ([]badge.StudentBadge, error) {
	var earned []badge.StudentBadge
	q := `SELECT student_id, badge_id, earned_at FROM student_badge
		WHERE student_id = $1 ORDER BY earned_at`
	if err := repo.db.SelectContext(ctx, &earned, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student badges")
	}
	return earned, nil
}

func (repo *badgeRepository) CountStudentBadges(ctx context.Context, studentID string) (int, error) {
	var count int
	q := `SELECT COUNT(*) FROM student_badge WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &count, q, studentID); err != nil {
		return 0, errors.Wrap(err, "counting student badges")
	}
	return count, nil
}

type badgeRow struct {
	ID          string          `db:"badge_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Icon        string          `db:"icon"`
	Criteria    json.RawMessage `db:"criteria"`
	Rarity      string          `db:"rarity"`
}

func (r badgeRow) toBadge() (badge.Badge, error) {
	b := badge.Badge{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Rarity:      r.Rarity,
	}
	if err := json.Unmarshal(r.Criteria, &b.Criteria); err != nil {
		return badge.Badge{}, errors.Wrap(err, "unmarshalling criteria")
	}
	return b, nil
}
