package rest

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"testing"
)

func TestEncodeMultipart(t *testing.T) {
	fields := url.Values{}
	fields.Set("title", "Tutoría de Cálculo I")
	fields.Add("keepImages", "https://cdn.example/a.png")
	fields.Add("keepImages", "https://cdn.example/b.png")

	files := []File{
		{Field: "images", Name: "cover.png", ContentType: "image/png", Content: []byte("png")},
		{Field: "images", Name: "extra.jpg", Content: []byte("jpg")},
	}

	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type = %q (%v)", contentType, err)
	}

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	var keepImages, fileNames, fileTypes []string
	var title string
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		data, _ := io.ReadAll(part)
		switch part.FormName() {
		case "title":
			title = string(data)
		case "keepImages":
			keepImages = append(keepImages, string(data))
		case "images":
			fileNames = append(fileNames, part.FileName())
			fileTypes = append(fileTypes, part.Header.Get("Content-Type"))
		}
	}

	if title != "Tutoría de Cálculo I" {
		t.Errorf("title = %q", title)
	}
	// Repeated values become repeated parts under the same field name.
	if len(keepImages) != 2 {
		t.Errorf("keepImages parts = %d, want 2", len(keepImages))
	}
	if len(fileNames) != 2 || fileNames[0] != "cover.png" || fileNames[1] != "extra.jpg" {
		t.Errorf("file names = %v", fileNames)
	}
	if fileTypes[0] != "image/png" {
		t.Errorf("declared content type = %q", fileTypes[0])
	}
	if fileTypes[1] != "application/octet-stream" {
		t.Errorf("fallback content type = %q", fileTypes[1])
	}
}
