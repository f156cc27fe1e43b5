// Package catalog holds the service listing entities of the marketplace.
package catalog

import "time"

// MaxImages is the cap on images per service, retained URLs and new
// uploads combined.
const MaxImages = 5

// Service is a listing offered by a student seller.
type Service struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CategoryID   string    `json:"categoryId"`
	FacultyID    string    `json:"facultyId"`
	CareerID     string    `json:"careerId"`
	SellerID     string    `json:"sellerId"`
	Seller       *Seller   `json:"seller,omitempty"`
	Images       []string  `json:"images"`
	IsActive     bool      `json:"isActive"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"totalReviews"`
	ViewCount    int       `json:"viewCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Seller is the denormalized seller summary attached to a listing.
type Seller struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfilePhoto string `json:"profilePhoto"`
	IsVerified   bool   `json:"isVerified"`
}

// Category groups listings for browsing and filtering.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SortField is an accepted sort key for listing searches.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByPrice     SortField = "price"
	SortByRating    SortField = "rating"
)

// Valid reports whether the sort field is one the API accepts.
func (s SortField) Valid() bool {
	switch s {
	case SortByCreatedAt, SortByPrice, SortByRating:
		return true
	}
	return false
}

// SortOrder is a sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether the sort order is one the API accepts.
func (s SortOrder) Valid() bool {
	return s == SortAsc || s == SortDesc
}
