package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name"`
	Email       string         `json:"email" gorm:"uniqueIndex"`
	Age         int            `json:"age"`
	Image       string         `json:"image"`
	Bio         string         `json:"bio"`
	Address     string         `json:"address"`
	PhoneNumber string         `json:"phone_number"`
	Password    string         `json:"-"`
	FirebaseUID *string        `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	PushToken   string         `json:"-"`
	Role        string         `json:"role" gorm:"size:20;default:'user'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// CompactUser is the author/owner shape embedded in feeds, comments and chats.
type CompactUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (u *User) ToCompact() CompactUser {
	return CompactUser{ID: u.ID, Name: u.Name, Image: u.Image}
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Age         int    `json:"age" validate:"min=0,max=150"`
	FirebaseUID string `json:"firebase_uid" validate:"required"`
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"min=0,max=150"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type UpdateUserRequest struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Email       string  `json:"email,omitempty" validate:"omitempty,email"`
	Age         int     `json:"age,omitempty" validate:"min=0,max=150"`
	Image       *string `json:"image,omitempty" validate:"omitempty,url"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=300"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=300"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
}

type PushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
