package progress

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/student"
)

var (
	// errors
	ErrNotFound          = errors.New("progress not found")
	ErrVideoNotCompleted = errors.New("complete the video first")
	ErrStandardMismatch  = errors.New("course not for your standard")
	ErrInvalidWatch      = errors.New("watch duration must not be negative")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetProgress(ctx context.Context, studentID, courseID string) (Progress, error)
		CreateProgress(ctx context.Context, p Progress) (Progress, error)
		// SaveProgress overwrites the mutable fields of an existing record.
		SaveProgress(ctx context.Context, p Progress) (Progress, error)
		ListProgressByStudent(ctx context.Context, studentID string) ([]Progress, error)
		CountPassedByStudent(ctx context.Context, studentID string) (int, error)
	}

	// Service is the progression state engine:
	// video-completion gating -> quiz unlock -> scoring -> pass/fail ->
	// credit award -> level recomputation -> badge evaluation.
	Service struct {
		repo       Repository
		courseSvc  *course.Service
		studentSvc *student.Service
		badgeSvc   *badge.Service
		log        core.Logger
	}
)

func NewService(
	repo Repository,
	courseSvc *course.Service,
	studentSvc *student.Service,
	badgeSvc *badge.Service,
	log core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		courseSvc:  courseSvc,
		studentSvc: studentSvc,
		badgeSvc:   badgeSvc,
		log:        log,
	}
}

// Start creates the progress record for a course, or returns the existing
// one unchanged. It never resets progress.
func (svc *Service) Start(ctx context.Context, std student.Student, courseID string) (Progress, bool, error) {
	if _, err := svc.courseSvc.GetByID(ctx, courseID); err != nil {
		return Progress{}, false, err
	}

	if existing, err := svc.repo.GetProgress(ctx, std.ID, courseID); err == nil {
		return existing, false, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Progress{}, false, errors.Wrap(err, "finding progress")
	}

	p := Progress{
		ID:        uuid.NewString(),
		StudentID: std.ID,
		CourseID:  courseID,
		UpdatedAt: nowFunc().UTC(),
	}
	created, err := svc.repo.CreateProgress(ctx, p)
	if err != nil {
		return Progress{}, false, errors.Wrap(err, "creating progress")
	}
	return created, true, nil
}

// RecordWatch upserts the watch duration and derives video completion:
// watched >= 90% of the course duration unlocks the quiz. The progress
// record is created on the fly when the explicit start step was skipped.
func (svc *Service) RecordWatch(ctx context.Context, std student.Student, courseID string, watchDuration int) (WatchResult, error) {
	if watchDuration < 0 {
		return WatchResult{}, ErrInvalidWatch
	}

	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return WatchResult{}, err
	}
	if crs.Standard != std.Standard {
		return WatchResult{}, ErrStandardMismatch
	}

	completed := float64(watchDuration) >= VideoCompletionRatio*float64(crs.DurationMinutes)

	p, err := svc.repo.GetProgress(ctx, std.ID, courseID)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		p = Progress{
			ID:        uuid.NewString(),
			StudentID: std.ID,
			CourseID:  courseID,
		}
		if p, err = svc.repo.CreateProgress(ctx, p); err != nil {
			return WatchResult{}, errors.Wrap(err, "creating progress")
		}
	default:
		return WatchResult{}, errors.Wrap(err, "finding progress")
	}

	p.VideoCompleted = completed
	p.WatchDuration = watchDuration
	p.UpdatedAt = nowFunc().UTC()
	if _, err := svc.repo.SaveProgress(ctx, p); err != nil {
		return WatchResult{}, errors.Wrap(err, "saving progress")
	}

	return WatchResult{VideoCompleted: completed, QuizUnlocked: completed}, nil
}

// FetchQuiz returns the course quiz with correct answers stripped. The quiz
// is locked until the video is completed.
func (svc *Service) FetchQuiz(ctx context.Context, std student.Student, courseID string) (*course.Quiz, error) {
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs.Standard != std.Standard {
		return nil, ErrStandardMismatch
	}

	p, err := svc.repo.GetProgress(ctx, std.ID, courseID)
	if err != nil || !p.VideoCompleted {
		return nil, ErrVideoNotCompleted
	}

	qz, err := svc.courseSvc.GetQuizByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return qz.Public(), nil
}

// SubmitQuiz grades an attempt, updates the progress record and, on the
// first pass for the course, awards credits, recomputes the level and
// evaluates badges. Re-passing an already-completed course is credit-neutral;
// credits would otherwise inflate without bound on repeated submissions.
func (svc *Service) SubmitQuiz(ctx context.Context, std student.Student, quizID string, answers map[string]string) (SubmitResult, error) {
	qz, err := svc.courseSvc.GetQuizByID(ctx, quizID)
	if err != nil {
		return SubmitResult{}, err
	}
	crs, err := svc.courseSvc.GetByID(ctx, qz.CourseID)
	if err != nil {
		return SubmitResult{}, err
	}

	p, err := svc.repo.GetProgress(ctx, std.ID, qz.CourseID)
	if err != nil || !p.VideoCompleted {
		return SubmitResult{}, ErrVideoNotCompleted
	}

	score, total, correct, passed := grade(&qz, answers)

	firstPass := passed && p.CompletedAt == nil
	creditsEarned := 0
	if firstPass {
		creditsEarned = crs.Credits
	}

	now := nowFunc().UTC()
	p.QuizCompleted = true
	p.QuizPassed = passed
	p.QuizAttempts++
	p.Score = score
	if firstPass {
		p.CreditsEarned = creditsEarned
		p.CompletedAt = &now
	}
	p.UpdatedAt = now
	if _, err := svc.repo.SaveProgress(ctx, p); err != nil {
		return SubmitResult{}, errors.Wrap(err, "saving progress")
	}

	result := SubmitResult{
		Score:          score,
		Total:          total,
		Passed:         passed,
		CreditsEarned:  creditsEarned,
		CorrectCount:   correct,
		TotalQuestions: len(qz.Questions),
		Message:        "Keep trying!",
	}
	if passed {
		result.Message = "Congratulations! You passed!"
	}

	if firstPass {
		newTotal, newLevel, err := svc.studentSvc.AddCredits(ctx, std.ID, creditsEarned)
		if err != nil {
			return result, errors.Wrap(err, "awarding credits")
		}
		result.NewCredits = newTotal
		result.NewLevel = newLevel

		awarded, err := svc.badgeSvc.Evaluate(ctx, std.ID, newTotal, newLevel)
		if err != nil {
			return result, errors.Wrap(err, "evaluating badges")
		}
		result.NewBadges = awarded
		if len(awarded) > 0 {
			svc.log.Info("badges awarded", map[string]interface{}{
				"student_id": std.ID, "count": len(awarded),
			})
		}
	}
	return result, nil
}

// grade scores the answers per the quiz's passing convention. Answers are
// keyed by question text.
func grade(qz *course.Quiz, answers map[string]string) (score, total, correct int, passed bool) {
	raw := 0
	for _, q := range qz.Questions {
		if answers[q.Text] == q.CorrectAnswer {
			raw += q.MarksFor()
			correct++
		}
	}

	if qz.UsesPercentage() {
		if n := len(qz.Questions); n > 0 {
			score = int(math.Round(100 * float64(correct) / float64(n)))
		}
		return score, 100, correct, score >= *qz.PassingScore
	}

	passingMarks := 0
	if qz.PassingMarks != nil {
		passingMarks = *qz.PassingMarks
	}
	return raw, qz.TotalMarks, correct, raw >= passingMarks
}

// ByStudent lists all progress records for the student.
func (svc *Service) ByStudent(ctx context.Context, studentID string) ([]Progress, error) {
	list, err := svc.repo.ListProgressByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Progress{}
	}
	return list, nil
}

// Get returns the progress record for one course, if any.
func (svc *Service) Get(ctx context.Context, studentID, courseID string) (Progress, error) {
	return svc.repo.GetProgress(ctx, studentID, courseID)
}

// CountPassed counts the student's completed courses.
func (svc *Service) CountPassed(ctx context.Context, studentID string) (int, error) {
	return svc.repo.CountPassedByStudent(ctx, studentID)
}

// StatsFor aggregates the student's progression snapshot.
func (svc *Service) StatsFor(ctx context.Context, std student.Student) (Stats, error) {
	completed, err := svc.repo.CountPassedByStudent(ctx, std.ID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting passed courses")
	}
	badges, err := svc.badgeSvc.CountForStudent(ctx, std.ID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting badges")
	}
	return Stats{
		TotalCredits:       std.TotalCredits,
		Level:              std.Level,
		CreditsToNextLevel: std.CreditsToNextLevel(),
		CompletedCourses:   completed,
		TotalBadges:        badges,
	}, nil
}
