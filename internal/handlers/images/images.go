// Package images provides image upload and download HTTP handlers.
package images

import (
	imgstore "github.com/Jeomhps/formation-admin/internal/images"
)

const (
	MaxFiles    = 10
	MaxFileSize = 10 << 20
	formField   = "images"
)

// Handler wires image endpoints to the blob store. baseURL prefixes the
// URLs handed back to clients.
type Handler struct {
	store   imgstore.Store
	baseURL string
}

func New(s imgstore.Store, baseURL string) *Handler {
	return &Handler{store: s, baseURL: baseURL}
}
