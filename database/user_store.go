package database

import (
	"context"

	"budget/apperr"
	"budget/identity"
	"budget/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserStore 基于 gorm 的用户存储
type UserStore struct {
	db *gorm.DB
}

var _ identity.UserStore = (*UserStore)(nil)

// NewUserStore 创建用户存储
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(apperr.ErrConflict, "username %q", u.Username)
	}
	return apperr.Storage(err, "create user")
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFoundf("user %q", username)
	}
	if err != nil {
		return models.User{}, apperr.Storage(err, "find user")
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFoundf("user %d", id)
	}
	if err != nil {
		return models.User{}, apperr.Storage(err, "find user")
	}
	return u, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uint, digest string) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", digest)
	if res.Error != nil {
		return apperr.Storage(res.Error, "update password")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("user %d", id)
	}
	return nil
}
