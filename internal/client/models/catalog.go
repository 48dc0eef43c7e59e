// Package models holds the client-side view of the catalog and of the
// upload workflow, as exchanged with the server API.
package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

type Product struct {
	ID          int64     `json:"id"`
	CategoryID  *int64    `json:"categoryId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

type GalleryItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// ProductFilter narrows a product listing. Zero values mean "any".
type ProductFilter struct {
	CategoryID *int64
	Query      string
}

func (f ProductFilter) IsZero() bool { return f.CategoryID == nil && f.Query == "" }
