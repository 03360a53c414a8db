package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// DeletedUserID is the sentinel owner written onto orders whose user was
	// removed. Historical orders survive user deletion anonymized, not erased.
	DeletedUserID = "deleted_user"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
