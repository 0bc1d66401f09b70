package models

import "time"

// SocialLinks holds optional profile links shown on the user's page.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// NotificationPrefs toggles the delivery channels for reminders.
type NotificationPrefs struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// Preferences holds per-user UI and notification settings.
type Preferences struct {
	Theme         string            `json:"theme"`
	CalendarView  string            `json:"calendarView"`
	Notifications NotificationPrefs `json:"notifications"`
}

// DefaultPreferences returns the preferences assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:        "light",
		CalendarView: "month",
		Notifications: NotificationPrefs{
			Email: true,
			Push:  true,
		},
	}
}

// Profile holds the free-form part of a user record.
type Profile struct {
	Bio         string      `json:"bio,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Location    string      `json:"location,omitempty"`
	AvatarKey   string      `json:"avatarKey,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks"`
}

// User represents a row in the PostgreSQL users table.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Password    string      `json:"-"` // never serialize
	Role        string      `json:"role"`
	Profile     Profile     `json:"profile"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the JSON body for PUT /api/users/profile.
// Pointer fields distinguish "not sent" from "set to empty".
type ProfileUpdate struct {
	Name        *string      `json:"name"`
	Bio         *string      `json:"bio"`
	Phone       *string      `json:"phone"`
	Location    *string      `json:"location"`
	SocialLinks *SocialLinks `json:"socialLinks"`
	Preferences *Preferences `json:"preferences"`
}

// Apply merges the patch into u. Nil fields leave the stored value
// untouched; the avatar key is never part of a profile patch.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Profile.Bio = *p.Bio
	}
	if p.Phone != nil {
		u.Profile.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Profile.Location = *p.Location
	}
	if p.SocialLinks != nil {
		u.Profile.SocialLinks = *p.SocialLinks
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
}
