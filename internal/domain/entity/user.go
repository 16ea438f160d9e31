package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash, never the plain text.
type User struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate time.Time
	AvatarURL string

	Preferences Preferences
	Privacy     PrivacySettings

	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
	DeletedAt *time.Time // soft delete marker
}

// Preferences are per-user UI and notification settings.
type Preferences struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

// PrivacySettings control what the user shares.
type PrivacySettings struct {
	ShareData      bool `json:"share_data"`
	PublicProfile  bool `json:"public_profile"`
	AllowReminders bool `json:"allow_reminders"`
}

// Active reports whether the account can authenticate.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}
