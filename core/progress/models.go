package progress

import (
	"time"

	"github.com/edubridge/backend/core/badge"
)

// VideoCompletionRatio is the watched share of a course video that unlocks
// the quiz. The 90% gate is the sole unlock condition.
const VideoCompletionRatio = 0.9

// Progress tracks one student through one course. At most one record exists
// per (student, course) pair; records are created lazily and never deleted.
// Only the progression engine mutates it.
type Progress struct {
	ID             string     `json:"progress_id" db:"progress_id"`
	StudentID      string     `json:"student_id" db:"student_id"`
	CourseID       string     `json:"course_id" db:"course_id"`
	VideoCompleted bool       `json:"video_completed" db:"video_completed"`
	WatchDuration  int        `json:"watch_duration" db:"watch_duration"`
	QuizCompleted  bool       `json:"quiz_completed" db:"quiz_completed"`
	QuizPassed     bool       `json:"quiz_passed" db:"quiz_passed"`
	QuizAttempts   int        `json:"quiz_attempts" db:"quiz_attempts"`
	Score          int        `json:"score" db:"score"`
	CreditsEarned  int        `json:"credits_earned" db:"credits_earned"`
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"` // set on first pass, never unset
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`     // UTC
}

// WatchResult reports the outcome of recording watch time.
type WatchResult struct {
	VideoCompleted bool `json:"video_completed"`
	QuizUnlocked   bool `json:"quiz_unlocked"`
}

// SubmitResult reports a quiz grading outcome. NewCredits/NewLevel are only
// populated when the attempt was the first pass for the course.
type SubmitResult struct {
	Score          int           `json:"score"`
	Total          int           `json:"total"`
	Passed         bool          `json:"passed"`
	CreditsEarned  int           `json:"credits_earned"`
	CorrectCount   int           `json:"correct_answers"`
	TotalQuestions int           `json:"total_questions"`
	NewCredits     int           `json:"new_credits,omitempty"`
	NewLevel       int           `json:"new_level,omitempty"`
	NewBadges      []badge.Badge `json:"new_badges,omitempty"`
	Message        string        `json:"message"`
}

// Stats is the student's aggregate progression snapshot.
type Stats struct {
	TotalCredits       int `json:"total_credits"`
	Level              int `json:"level"`
	CreditsToNextLevel int `json:"credits_to_next_level"`
	CompletedCourses   int `json:"completed_courses"`
	TotalBadges        int `json:"total_badges"`
}
