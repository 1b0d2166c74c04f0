// ABOUTME: User record shared between the directory store and auth services
// ABOUTME: Mirrors the user profile row, password hash lives elsewhere

package dictionary

import "time"

// User represents a human user of the hydro platform.
type User struct {
	ID            int       `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	WebRole       WebRole   `json:"webRole"`
	ResetPassword bool      `json:"resetPassword,omitempty"`
	LastLoginDate time.Time `json:"lastLoginDate,omitempty"`
	InsertDate    time.Time `json:"insertDate,omitempty"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
