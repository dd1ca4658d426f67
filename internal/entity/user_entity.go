package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Records are created once at registration and
// never mutated afterwards; username is the unique key (case-sensitive).
type User struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserFile is the on-disk shape of the credential store.
type UserFile struct {
	Users []*User `json:"users"`
}
