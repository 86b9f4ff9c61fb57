package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/edubridge/backend/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CheckMobileUniqueness(_ context.Context, mobile string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.table {
		if std.Mobile == mobile {
			return student.ErrMobileExists
		}
	}
	return nil
}

func (repo *studentRepository) UsernameTaken(_ context.Context, username string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.table {
		if std.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUsername(_ context.Context, username string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, std := range repo.db.table {
		if std.Username == username {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FindStudentsByMobile(_ context.Context, mobile string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var linked []student.Student
	for _, std := range repo.query() {
		if std.Mobile == mobile {
			linked = append(linked, std)
		}
	}
	sort.Slice(linked, func(i, j int) bool { return linked[i].Username < linked[j].Username })
	return linked, nil
}

func (repo *studentRepository) SetLastLogin(_ context.Context, id string, t time.Time) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.LastLogin = t
	return *std, nil
}

func (repo *studentRepository) SetPasswordHash(_ context.Context, id string, hash []byte) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return student.ErrNotFound
	}
	std.PasswordHash = hash
	return nil
}

// AddCredits holds the table lock across the read-modify-write, which makes
// the increment atomic for this single-process store.
func (repo *studentRepository) AddCredits(_ context.Context, id string, delta int) (int, int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std, ok := repo.db.table[id]
	if !ok {
		return 0, 0, student.ErrNotFound
	}
	std.TotalCredits += delta
	std.Level = student.LevelForCredits(std.TotalCredits)
	return std.TotalCredits, std.Level, nil
}

func (repo *studentRepository) TopStudents(_ context.Context, standard string, limit int) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var top []student.Student
	for _, std := range repo.query() {
		if standard == "" || std.Standard == standard {
			top = append(top, std)
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].TotalCredits > top[j].TotalCredits })
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
