package inmemdb

import (
	"context"
	"time"

	"github.com/edubridge/backend/core/account"
)

type userRepository struct {
	db *userTable
}

var _ account.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) account.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckUniqueness(_ context.Context, institutionID, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.InstitutionID == institutionID {
			return account.ErrInstitutionIDExists
		}
		if usr.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr account.User) (account.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (account.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return account.User{}, account.ErrNotFound
}

func (repo *userRepository) GetUserByInstitutionID(_ context.Context, institutionID string) (account.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.InstitutionID == institutionID {
			return *usr, nil
		}
	}
	return account.User{}, account.ErrNotFound
}

func (repo *userRepository) SetLastLogin(_ context.Context, id string, t time.Time) (account.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	usr.LastLogin = t
	return *usr, nil
}
