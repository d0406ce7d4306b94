package api

import "time"

type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullname"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Book struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	CoverImage  string    `json:"cover_image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BookInput is the create/update payload. A nil CoverImage is left out of
// the request, which on update keeps the stored cover.
type BookInput struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	CoverImage  *string `json:"cover_image,omitempty"`
}

type SignupRequest struct {
	FullName string `json:"fullname"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CoverUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	CoverURL  string    `json:"cover_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
