package services

import (
	"net/url"
	"strconv"

	"github.com/uleam-conecta/conecta-go/internal/domain/catalog"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/internal/validate"
)

// CreateInput is the new-listing form.
type CreateInput struct {
	Title       string
	Description string
	Price       float64
	CategoryID  string
	FacultyID   string
	CareerID    string
	Images      []rest.File
}

// Validate checks the form before any request is built.
func (in CreateInput) Validate() error {
	e := validate.FieldErrors{}
	validate.MinChars(e, "title", in.Title, 10, "El título debe tener al menos 10 caracteres")
	validate.MinChars(e, "description", in.Description, 50, "La descripción debe tener al menos 50 caracteres")
	validate.PositivePrice(e, "price", in.Price)
	validate.Required(e, "categoryId", in.CategoryID, "La categoría es obligatoria")
	validate.Required(e, "facultyId", in.FacultyID, "La facultad es obligatoria")
	validate.Required(e, "careerId", in.CareerID, "La carrera es obligatoria")
	validate.MaxItems(e, "images", len(in.Images), catalog.MaxImages)
	return e.OrNil()
}

// UpdateInput is a partial listing update. Nil pointer fields are left
// untouched server-side. KeepImages lists existing image URLs to retain;
// NewImages are uploaded alongside them.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *float64
	CategoryID  *string
	FacultyID   *string
	CareerID    *string
	KeepImages  []string
	NewImages   []rest.File
}

// Validate checks only the fields the update actually sets.
func (in UpdateInput) Validate() error {
	e := validate.FieldErrors{}
	if in.Title != nil {
		validate.MinChars(e, "title", *in.Title, 10, "El título debe tener al menos 10 caracteres")
	}
	if in.Description != nil {
		validate.MinChars(e, "description", *in.Description, 50, "La descripción debe tener al menos 50 caracteres")
	}
	if in.Price != nil {
		validate.PositivePrice(e, "price", *in.Price)
	}
	validate.MaxItems(e, "images", len(in.KeepImages)+len(in.NewImages), catalog.MaxImages)
	return e.OrNil()
}

// fields serialises the set fields for a multipart update.
func (in UpdateInput) fields() url.Values {
	v := url.Values{}
	if in.Title != nil {
		v.Set("title", *in.Title)
	}
	if in.Description != nil {
		v.Set("description", *in.Description)
	}
	if in.Price != nil {
		v.Set("price", strconv.FormatFloat(*in.Price, 'f', 2, 64))
	}
	if in.CategoryID != nil {
		v.Set("categoryId", *in.CategoryID)
	}
	if in.FacultyID != nil {
		v.Set("facultyId", *in.FacultyID)
	}
	if in.CareerID != nil {
		v.Set("careerId", *in.CareerID)
	}
	for _, u := range in.KeepImages {
		v.Add("keepImages", u)
	}
	return v
}

// body serialises the set fields for a JSON update.
func (in UpdateInput) body() map[string]any {
	b := map[string]any{}
	if in.Title != nil {
		b["title"] = *in.Title
	}
	if in.Description != nil {
		b["description"] = *in.Description
	}
	if in.Price != nil {
		b["price"] = *in.Price
	}
	if in.CategoryID != nil {
		b["categoryId"] = *in.CategoryID
	}
	if in.FacultyID != nil {
		b["facultyId"] = *in.FacultyID
	}
	if in.CareerID != nil {
		b["careerId"] = *in.CareerID
	}
	if in.KeepImages != nil {
		b["keepImages"] = in.KeepImages
	}
	return b
}

// ReviewInput is the review form.
type ReviewInput struct {
	ServiceID string
	Rating    int
	Comment   string
}

// Validate checks the review form.
func (in ReviewInput) Validate() error {
	e := validate.FieldErrors{}
	validate.Required(e, "serviceId", in.ServiceID, "El servicio es obligatorio")
	validate.RatingRange(e, "rating", in.Rating)
	return e.OrNil()
}
