package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/edubridge/backend/core"
)

// User is an institutional account (admins, teachers and the legacy parent
// role). Students have their own record type; see core/student.
type User struct {
	ID            string    `json:"user_id" db:"user_id"`
	InstitutionID string    `json:"institution_id" db:"institution_id"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"full_name" db:"full_name"`
	Mobile        string    `json:"mobile" db:"mobile"`
	Role          string    `json:"role" db:"role"`
	PasswordHash  []byte    `json:"-" db:"password_hash"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	LastLogin     time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register an institutional User.
type NewUser struct {
	InstitutionID string `json:"institution_id" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	FullName      string `json:"full_name" validate:"required"`
	Mobile        string `json:"mobile" validate:"required,mobile"`
	Role          string `json:"role" validate:"required,oneof=admin teacher parent"`
	Password      string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.InstitutionID = core.CleanString(nu.InstitutionID)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Mobile = core.CleanString(nu.Mobile)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.InstitutionID, nu.Email)
}
