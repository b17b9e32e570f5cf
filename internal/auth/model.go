package auth

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type User struct {
	ID            uint       `gorm:"primaryKey"`
	FirstName     *string    `gorm:"column:first_name;size:255"`
	LastName      *string    `gorm:"column:last_name;size:255"`
	Username      string     `gorm:"size:50;not null"`
	Email         string     `gorm:"size:255;not null"`
	PasswordHash  string     `gorm:"column:password_hash;size:255;not null"`
	AvatarURL     *string    `gorm:"column:avatar_url;size:255"`
	Role          Role       `gorm:"size:50;not null"`
	DelFlag       bool       `gorm:"column:del_flag;not null;default:false"`
	OTP           *string    `gorm:"column:otp;size:10"`
	OTPExpiryTime *time.Time `gorm:"column:otp_expiry_time"`
	RefreshToken  *string    `gorm:"column:refresh_token;size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// SetOTP stores a reset code together with its expiry. The two fields are
// always written as a pair.
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OTP = &code
	u.OTPExpiryTime = &expiresAt
}

func (u *User) ClearOTP() {
	u.OTP = nil
	u.OTPExpiryTime = nil
}

// Profile is the public view of a user; it never carries the password hash.
type Profile struct {
	ID        uint    `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Role      Role    `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}
