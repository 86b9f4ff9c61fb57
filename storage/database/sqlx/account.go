package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/account"
)

type userRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) account.Repository {
	return &userRepository{db: db}
}

const userCols = `user_id, institution_id, email, full_name, mobile, role,
	password_hash, is_active, created_at, last_login`

func (repo *userRepository) CheckUniqueness(ctx context.Context, institutionID, email string) error {
	var row struct {
		InstitutionTaken bool `db:"institution_taken"`
		EmailTaken       bool `db:"email_taken"`
	}
	q := `SELECT
			EXISTS (SELECT 1 FROM app_user WHERE institution_id = $1) AS institution_taken,
			EXISTS (SELECT 1 FROM app_user WHERE email = $2) AS email_taken`
	if err := repo.db.GetContext(ctx, &row, q, institutionID, email); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if row.InstitutionTaken {
		return account.ErrInstitutionIDExists
	}
	if row.EmailTaken {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr account.User) (account.User, error) {
	q := `INSERT INTO app_user (user_id, institution_id, email, full_name, mobile, role,
			password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.InstitutionID, usr.Email, usr.FullName, usr.Mobile, usr.Role,
		usr.PasswordHash, usr.IsActive, usr.CreatedAt,
	)
	if err != nil {
		return account.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (account.User, error) {
	var row userRow
	q := `SELECT ` + userCols + ` FROM app_user WHERE user_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return account.User{}, account.ErrNotFound
		}
		return account.User{}, errors.Wrap(err, "getting user by id")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByInstitutionID(ctx context.Context, institutionID string) (account.User, error) {
	var row userRow
	q := `SELECT ` + userCols + ` FROM app_user WHERE institution_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, institutionID); err != nil {
		if err == sql.ErrNoRows {
			return account.User{}, account.ErrNotFound
		}
		return account.User{}, errors.Wrap(err, "getting user by institution id")
	}
	return row.toUser(), nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) (account.User, error) {
	q := `UPDATE app_user SET last_login = $2 WHERE user_id = $1`
	res, err := repo.db.ExecContext(ctx, q, id, t)
	if err != nil {
		return account.User{}, errors.Wrap(err, "setting last login")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.User{}, account.ErrNotFound
	}
	return repo.GetUserByID(ctx, id)
}

type userRow struct {
	ID            string       `db:"user_id"`
	InstitutionID string       `db:"institution_id"`
	Email         string       `db:"email"`
	FullName      string       `db:"full_name"`
	Mobile        string       `db:"mobile"`
	Role          string       `db:"role"`
	PasswordHash  []byte       `db:"password_hash"`
	IsActive      bool         `db:"is_active"`
	CreatedAt     time.Time    `db:"created_at"`
	LastLogin     sql.NullTime `db:"last_login"`
}

func (r userRow) toUser() account.User {
	usr := account.User{
		ID:            r.ID,
		InstitutionID: r.InstitutionID,
		Email:         r.Email,
		FullName:      r.FullName,
		Mobile:        r.Mobile,
		Role:          r.Role,
		PasswordHash:  r.PasswordHash,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}
