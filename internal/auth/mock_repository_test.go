package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memoryRepository keeps users in process. It backs the service and handler
// tests and mirrors the soft-delete and case-insensitive rules of the gorm
// repository.
type memoryRepository struct {
	mu     sync.RWMutex
	users  map[uint]*User
	nextID uint
}

func newMockRepository() *memoryRepository {
	return &memoryRepository{
		users:  make(map[uint]*User),
		nextID: 1,
	}
}

func (r *memoryRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if !u.DelFlag && match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id uint) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	return r.find(func(u *User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *memoryRepository) FindByRefreshToken(_ context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return r.find(func(u *User) bool { return u.RefreshToken != nil && *u.RefreshToken == token })
}

func (r *memoryRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.DelFlag {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return ErrUserExists
		}
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryRepository) Update(_ context.Context, user *User, columns ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[user.ID]
	if !exists || stored.DelFlag {
		return ErrUserNotFound
	}

	for _, column := range columns {
		switch column {
		case ColumnRefreshToken:
			stored.RefreshToken = user.RefreshToken
		case ColumnOTP:
			stored.OTP = user.OTP
		case ColumnOTPExpiryTime:
			stored.OTPExpiryTime = user.OTPExpiryTime
		case ColumnPasswordHash:
			stored.PasswordHash = user.PasswordHash
		default:
			panic("memoryRepository: unsupported column " + column)
		}
	}
	stored.UpdatedAt = time.Now()
	return nil
}

// softDelete flags a user the way an admin deletion does.
func (r *memoryRepository) softDelete(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		u.DelFlag = true
	}
}

// seed inserts a user as-is, including soft-deleted ones.
func (r *memoryRepository) seed(user *User) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return user
}

func (r *memoryRepository) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// get returns the stored record regardless of soft deletion.
func (r *memoryRepository) get(id uint) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	clone := *u
	return &clone
}
