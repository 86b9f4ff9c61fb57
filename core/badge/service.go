package badge

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("badge not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateBadge(ctx context.Context, b Badge) (Badge, error)
		QueryAllBadges(ctx context.Context) ([]Badge, error)
		// HasStudentBadge reports whether the (student, badge) pair exists.
		HasStudentBadge(ctx context.Context, studentID, badgeID string) (bool, error)
		CreateStudentBadge(ctx context.Context, sb StudentBadge) error
		QueryStudentBadges(ctx context.Context, studentID string) ([]StudentBadge, error)
		CountStudentBadges(ctx context.Context, studentID string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, b Badge) (Badge, error) {
	return svc.repo.CreateBadge(ctx, b)
}

func (svc *Service) Catalog(ctx context.Context) ([]Badge, error) {
	return svc.repo.QueryAllBadges(ctx)
}

// Evaluate scans the whole catalog against the student's updated totals and
// awards every unearned badge whose criteria is met. A single quiz pass can
// cross multiple thresholds at once, so evaluation never stops at the first
// match. Safe to call redundantly: earned badges are skipped.
func (svc *Service) Evaluate(ctx context.Context, studentID string, totalCredits, level int) ([]Badge, error) {
	badges, err := svc.repo.QueryAllBadges(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying badge catalog")
	}

	var awarded []Badge
	for _, b := range badges {
		earned, err := svc.repo.HasStudentBadge(ctx, studentID, b.ID)
		if err != nil {
			return awarded, errors.Wrap(err, "checking earned badge")
		}
		if earned || !b.Criteria.Met(totalCredits, level) {
			continue
		}

		sb := StudentBadge{
			StudentID: studentID,
			BadgeID:   b.ID,
			EarnedAt:  nowFunc().UTC(),
		}
		if err := svc.repo.CreateStudentBadge(ctx, sb); err != nil {
			return awarded, errors.Wrap(err, "awarding badge")
		}
		awarded = append(awarded, b)
	}
	return awarded, nil
}

// EarnedByStudent joins the student's badges with the catalog.
func (svc *Service) EarnedByStudent(ctx context.Context, studentID string) ([]EarnedBadge, error) {
	studentBadges, err := svc.repo.QueryStudentBadges(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(studentBadges) == 0 {
		return []EarnedBadge{}, nil
	}

	catalog, err := svc.repo.QueryAllBadges(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}

	earned := make([]EarnedBadge, 0, len(studentBadges))
	for _, sb := range studentBadges {
		b, ok := byID[sb.BadgeID]
		if !ok {
			continue // catalog entry removed out-of-band
		}
		earned = append(earned, EarnedBadge{Badge: b, EarnedAt: sb.EarnedAt})
	}
	return earned, nil
}

func (svc *Service) CountForStudent(ctx context.Context, studentID string) (int, error) {
	return svc.repo.CountStudentBadges(ctx, studentID)
}
