package models

// User represents an account holder.
// It maps to the `user` table in SQLite. PasswordHash never leaves the server.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
}

// Profile is the public snapshot of a User bound to a session.
type Profile struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Username string `db:"username" json:"username"`
}

// Profile returns the password-free view of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Username: u.Username}
}

// NewUser carries the fields needed to register an account.
type NewUser struct {
	Name         string
	Email        string
	Username     string
	PasswordHash string
}
