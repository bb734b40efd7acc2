// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleAuditor = "auditor"
)

// User is a cashier or back-office account. Invoices are owned by users.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	Name         string            `gorm:"type:varchar(255);not null"`
	Login        string            `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string            `gorm:"type:text;not null"`
	Role         string            `gorm:"type:varchar(32);not null;default:'cashier'"`
	Metadata     datatypes.JSONMap
	CreatedAt    time.Time         `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCashier, RoleAuditor:
		return true
	default:
		return false
	}
}

// UserView is the public projection of a user.
type UserView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Login     string         `json:"login"`
	Role      string         `json:"role"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID.String(),
		Name:      u.Name,
		Login:     u.Login,
		Role:      u.Role,
		Metadata:  u.Metadata,
		CreatedAt: u.CreatedAt,
	}
}
