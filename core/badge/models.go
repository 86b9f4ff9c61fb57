package badge

import "time"

// Criteria kinds.
const (
	KindCredits = "credits"
	KindLevel   = "level"
)

type Criteria struct {
	Kind      string `json:"type"`
	Threshold int    `json:"threshold"`
}

// Badge is a static catalog entry, read-only to the evaluator.
type Badge struct {
	ID          string   `json:"badge_id" db:"badge_id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Icon        string   `json:"icon" db:"icon"`
	Criteria    Criteria `json:"criteria"`
	Rarity      string   `json:"rarity" db:"rarity"`
}

// Met reports whether the criteria is satisfied by the given totals.
func (c Criteria) Met(totalCredits, level int) bool {
	switch c.Kind {
	case KindCredits:
		return totalCredits >= c.Threshold
	case KindLevel:
		return level >= c.Threshold
	}
	return false
}

// StudentBadge records one earned badge; unique per (student, badge),
// never deleted.
type StudentBadge struct {
	StudentID string    `json:"student_id" db:"student_id"`
	BadgeID   string    `json:"badge_id" db:"badge_id"`
	EarnedAt  time.Time `json:"earned_at" db:"earned_at"` // UTC
}

// EarnedBadge is a catalog entry joined with when the student earned it.
type EarnedBadge struct {
	Badge
	EarnedAt time.Time `json:"earned_at"`
}
