package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Repository is the single lookup surface over user records. Every lookup
// ignores soft-deleted users.
type Repository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByRefreshToken(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, user *User) error
	// Update writes only the named columns of a non-deleted user.
	Update(ctx context.Context, user *User, columns ...string) error
}

// Columns written by the session and password-reset flows.
const (
	ColumnRefreshToken  = "refresh_token"
	ColumnOTP           = "otp"
	ColumnOTPExpiryTime = "otp_expiry_time"
	ColumnPasswordHash  = "password_hash"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("del_flag = ?", false)
}

func (r *repository) first(query *gorm.DB) (*User, error) {
	var user User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	return r.first(r.active(ctx).Where("id = ?", id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(r.active(ctx).Where("LOWER(email) = LOWER(?)", email))
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.first(r.active(ctx).Where("LOWER(username) = LOWER(?)", username))
}

func (r *repository) FindByRefreshToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return r.first(r.active(ctx).Where("refresh_token = ?", token))
}

func (r *repository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, user *User, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}

	result := r.active(ctx).Model(user).Select(columns).Updates(user)
	if result.Error != nil {
		return result.Error
	}
	// The user was deleted between lookup and write.
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
