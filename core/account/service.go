package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
)

var (
	// errors
	ErrNotFound            = errors.New("user not found")
	ErrInstitutionIDExists = errors.New("a user with this institution ID already exists")
	ErrEmailExists         = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, institutionID, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByInstitutionID(ctx context.Context, institutionID string) (User, error)
		SetLastLogin(ctx context.Context, id string, t time.Time) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(institutionID, email string) error {
	if err := svc.repo.CheckUniqueness(context.Background(), institutionID, email); err != nil {
		var field string
		switch err {
		case ErrInstitutionIDExists:
			field = "institution_id"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		ID:            uuid.NewString(),
		InstitutionID: nu.InstitutionID,
		Email:         nu.Email,
		FullName:      nu.FullName,
		Mobile:        nu.Mobile,
		Role:          nu.Role,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByInstitutionID(ctx context.Context, institutionID string) (User, error) {
	return svc.repo.GetUserByInstitutionID(ctx, core.CleanString(institutionID))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr.ID, time.Now().UTC())
}
