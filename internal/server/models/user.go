// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"fullname" json:"fullname"`
	UserName     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// PublicUser is the projection of User that crosses the API boundary.
type PublicUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullname"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the credential fields from u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		UserName:  u.UserName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
