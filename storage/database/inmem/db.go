package inmemdb

import (
	"sync"

	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
)

// DB is a process-local store used by tests and dev mode. Each table guards
// itself with an RWMutex; cross-table operations are not transactional.
type (
	DB struct {
		student *studentTable
		user    *userTable
		course  *courseTable
		quiz    *quizTable
		prog    *progressTable
		badge   *badgeTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student // by student_id
	}

	userTable struct {
		sync.RWMutex
		table map[string]*account.User // by user_id
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course // by course_id
	}

	quizTable struct {
		sync.RWMutex
		table map[string]*course.Quiz // by quiz_id
	}

	progressTable struct {
		sync.RWMutex
		table map[progressKey]*progress.Progress
	}

	progressKey struct {
		studentID string
		courseID  string
	}

	badgeTable struct {
		sync.RWMutex
		table  map[string]*badge.Badge // by badge_id
		earned map[earnedKey]*badge.StudentBadge
	}

	earnedKey struct {
		studentID string
		badgeID   string
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		user:    &userTable{table: make(map[string]*account.User)},
		course:  &courseTable{table: make(map[string]*course.Course)},
		quiz:    &quizTable{table: make(map[string]*course.Quiz)},
		prog:    &progressTable{table: make(map[progressKey]*progress.Progress)},
		badge: &badgeTable{
			table:  make(map[string]*badge.Badge),
			earned: make(map[earnedKey]*badge.StudentBadge),
		},
	}
	return db, nil
}
