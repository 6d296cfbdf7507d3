package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClientRole = "client"
	AdminRole  = "admin"
)

type User struct {
	ID                uuid.UUID
	Username          string
	Password          string
	Email             string
	ProfilePictureKey *string
	Roles             []string
	CreatedAt         time.Time
}

type Profile struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Roles             []string  `json:"roles"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
}
