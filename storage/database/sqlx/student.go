package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

const studentCols = `student_id, name, username, mobile, standard, password_hash,
	is_active, total_credits, level, created_at, last_login`

func (repo *studentRepository) CheckMobileUniqueness(ctx context.Context, mobile string) error {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM student WHERE mobile = $1)`
	if err := repo.db.GetContext(ctx, &exists, q, mobile); err != nil {
		return errors.Wrap(err, "checking mobile uniqueness")
	}
	if exists {
		return student.ErrMobileExists
	}
	return nil
}

func (repo *studentRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	q := `SELECT EXISTS (SELECT 1 FROM student WHERE username = $1)`
	if err := repo.db.GetContext(ctx, &taken, q, username); err != nil {
		return false, errors.Wrap(err, "checking username")
	}
	return taken, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	q := `INSERT INTO student (student_id, name, username, mobile, standard, password_hash,
			is_active, total_credits, level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		std.ID, std.Name, std.Username, std.Mobile, std.Standard, std.PasswordHash,
		std.IsActive, std.TotalCredits, std.Level, std.CreatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	q := `SELECT ` + studentCols + ` FROM student WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by id")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudentByUsername(ctx context.Context, username string) (student.Student, error) {
	var row studentRow
	q := `SELECT ` + studentCols + ` FROM student WHERE username = $1`
	if err := repo.db.GetContext(ctx, &row, q, username); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by username")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) FindStudentsByMobile(ctx context.Context, mobile string) ([]student.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentCols + ` FROM student WHERE mobile = $1 ORDER BY username`
	if err := repo.db.SelectContext(ctx, &rows, q, mobile); err != nil {
		return nil, errors.Wrap(err, "finding students by mobile")
	}
	return toStudents(rows), nil
}

func (repo *studentRepository) SetLastLogin(ctx context.Context, id string, t time.Time) (student.Student, error) {
	q := `UPDATE student SET last_login = $2 WHERE student_id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, t)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "setting last login")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, id)
}

func (repo *studentRepository) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	q := `UPDATE student SET password_hash = $2 WHERE student_id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, hash)
	if err != nil {
		return errors.Wrap(err, "setting password hash")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

// AddCredits increments in a single statement so concurrent quiz passes
// cannot lose updates; the level is recomputed from the post-increment total.
func (repo *studentRepository) AddCredits(ctx context.Context, id string, delta int) (int, int, error) {
	var row struct {
		TotalCredits int `db:"total_credits"`
		Level        int `db:"level"`
	}
	q := `UPDATE student
		SET total_credits = total_credits + $2,
			level = (total_credits + $2) / $3 + 1
		WHERE student_id = $1
		RETURNING total_credits, level`
	if err := repo.db.GetContext(ctx, &row, q, id, delta, student.CreditsPerLevel); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, student.ErrNotFound
		}
		return 0, 0, errors.Wrap(err, "adding credits")
	}
	return row.TotalCredits, row.Level, nil
}

func (repo *studentRepository) TopStudents(ctx context.Context, standard string, limit int) ([]student.Student, error) {
	var rows []studentRow
	var err error
	if standard != "" {
		q := `SELECT ` + studentCols + ` FROM student WHERE standard = $1
			ORDER BY total_credits DESC LIMIT $2`
		err = repo.db.SelectContext(ctx, &rows, q, standard, limit)
	} else {
		q := `SELECT ` + studentCols + ` FROM student ORDER BY total_credits DESC LIMIT $1`
		err = repo.db.SelectContext(ctx, &rows, q, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying top students")
	}
	return toStudents(rows), nil
}

// studentRow maps nullable columns before conversion to the domain type.
type studentRow struct {
	ID           string       `db:"student_id"`
	Name         string       `db:"name"`
	Username     string       `db:"username"`
	Mobile       string       `db:"mobile"`
	Standard     string       `db:"standard"`
	PasswordHash []byte       `db:"password_hash"`
	IsActive     bool         `db:"is_active"`
	TotalCredits int          `db:"total_credits"`
	Level        int          `db:"level"`
	CreatedAt    time.Time    `db:"created_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (r studentRow) toStudent() student.Student {
	std := student.Student{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Mobile:       r.Mobile,
		Standard:     r.Standard,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
		TotalCredits: r.TotalCredits,
		Level:        r.Level,
		CreatedAt:    r.CreatedAt,
	}
	if r.LastLogin.Valid {
		std.LastLogin = r.LastLogin.Time
	}
	return std
}

func toStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students
}
