package models

import "time"

// Book is a single record in a user's library. UserID is the owner; every
// read and write of a Book is scoped by it.
type Book struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	Description string    `db:"description" json:"description"`
	CoverImage  string    `db:"cover_image" json:"cover_image"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// BookInput carries the user-editable fields of a Book.
//
// CoverImage is nil when the field was omitted altogether, which update
// treats differently from an explicit (possibly empty) value.
type BookInput struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	CoverImage  *string `json:"cover_image"`
}
