// Package uploads is the resource module for standalone file uploads.
package uploads

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// MaxImageBytes caps uploaded image size client-side.
const MaxImageBytes = 5 << 20

// Module bundles the upload mutations.
type Module struct {
	api     *rest.Client
	session query.Session
	log     *logger.Logger
}

// New creates the uploads module.
func New(api *rest.Client, session query.Session, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewDefault("uploads")
	}
	return &Module{api: api, session: session, log: log}
}

// Image uploads a single image and returns its public URL. Size and content
// type are checked before any request is built.
func (m *Module) Image(ctx context.Context, f rest.File) (string, error) {
	if err := query.RequireSession(m.session); err != nil {
		return "", err
	}
	if len(f.Content) == 0 {
		return "", fmt.Errorf("empty file %q", f.Name)
	}
	if len(f.Content) > MaxImageBytes {
		return "", fmt.Errorf("file %q exceeds %d bytes", f.Name, MaxImageBytes)
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return "", fmt.Errorf("file %q is not an image (%s)", f.Name, f.ContentType)
	}
	if f.Field == "" {
		f.Field = "file"
	}

	resp, err := m.api.DoMultipart(ctx, "POST", "/uploads", url.Values{}, []rest.File{f})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload response missing url")
	}
	m.log.Infof("uploaded %s (%d bytes)", f.Name, len(f.Content))
	return out.URL, nil
}
