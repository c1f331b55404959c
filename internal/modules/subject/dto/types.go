package dto

import "time"

type CreateInput struct {
	Name  string
	Color string
	Image string
}

// UpdateInput leaves nil fields unchanged.
type UpdateInput struct {
	ID    string
	Name  *string
	Color *string
	Image *string
}

type SubjectOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
