package entities

import "time"

// Credential is a login entry from the users file kept next to the question bank.
type Credential struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`   // plain text, or a bcrypt hash starting with "$2"
	SingleUse bool     `json:"single_use"` // consumed by the first successful login
	Sections  []string `json:"sections"`   // optional allow-list, empty means every section
}

// User is an authenticated quiz taker.
type User struct {
	Username  string
	Sections  []string // allow-list copied from the credential
	LoggedAt  time.Time
	SingleUse bool
}

// AllowsSection reports whether the user may take a quiz on the section.
// An empty section stands for a whole-bank quiz, which a restricted user may not take.
func (u *User) AllowsSection(section string) bool {
	if len(u.Sections) == 0 {
		return true
	}
	if section == "" {
		return false
	}
	for _, s := range u.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// NewUser creates a User from a verified credential.
func NewUser(c *Credential) *User {
	return &User{
		Username:  c.Username,
		Sections:  append([]string(nil), c.Sections...),
		LoggedAt:  time.Now(),
		SingleUse: c.SingleUse,
	}
}
