package validate

import "testing"

func TestMinChars_CountsRunesNotBytes(t *testing.T) {
	e := FieldErrors{}
	// 10 characters, more than 10 bytes.
	MinChars(e, "title", "Matemática", 10, "muy corto")
	if len(e) != 0 {
		t.Fatalf("accented 10-char title rejected: %v", e)
	}

	MinChars(e, "title", "Cálculo", 10, "muy corto")
	if e["title"] != "muy corto" {
		t.Fatalf("short title accepted: %v", e)
	}
}

func TestMinChars_TrimsWhitespace(t *testing.T) {
	e := FieldErrors{}
	MinChars(e, "title", "   abc    ", 5, "muy corto")
	if len(e) != 1 {
		t.Fatalf("padded short title accepted: %v", e)
	}
}

func TestRequired(t *testing.T) {
	e := FieldErrors{}
	Required(e, "categoryId", "  ", "La categoría es obligatoria")
	Required(e, "facultyId", "f1", "La facultad es obligatoria")
	if e["categoryId"] != "La categoría es obligatoria" {
		t.Errorf("blank value accepted: %v", e)
	}
	if _, ok := e["facultyId"]; ok {
		t.Errorf("present value rejected: %v", e)
	}
}

func TestPositivePrice(t *testing.T) {
	for _, price := range []float64{0, -1.5} {
		e := FieldErrors{}
		PositivePrice(e, "price", price)
		if e["price"] != "El precio debe ser mayor a 0" {
			t.Errorf("price %v: %v", price, e)
		}
	}
	e := FieldErrors{}
	PositivePrice(e, "price", 25.00)
	if len(e) != 0 {
		t.Errorf("valid price rejected: %v", e)
	}
}

func TestMaxItems(t *testing.T) {
	e := FieldErrors{}
	MaxItems(e, "images", 6, 5)
	if e["images"] != "Máximo 5 imágenes" {
		t.Fatalf("images = %v", e)
	}
}

func TestRatingRange(t *testing.T) {
	for _, rating := range []int{0, 6} {
		e := FieldErrors{}
		RatingRange(e, "rating", rating)
		if e["rating"] != "La calificación debe estar entre 1 y 5" {
			t.Errorf("rating %d: %v", rating, e)
		}
	}
}

func TestFieldErrors_AddKeepsFirstMessage(t *testing.T) {
	e := FieldErrors{}
	e.Add("title", "primero")
	e.Add("title", "segundo")
	if e["title"] != "primero" {
		t.Fatalf("title = %q", e["title"])
	}
}

func TestFieldErrors_OrNil(t *testing.T) {
	if err := (FieldErrors{}).OrNil(); err != nil {
		t.Fatalf("empty map produced error: %v", err)
	}
	e := FieldErrors{"title": "muy corto"}
	if err := e.OrNil(); err == nil {
		t.Fatal("non-empty map produced nil")
	}
}
