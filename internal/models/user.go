package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleCleaner = "cleaner"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	Name           string
	Phone          string
	Address        string
	HashedPassword string
	Role           string
	IsDeleted      bool
	DeletedAt      *time.Time // nil unless soft-deleted
}
