// Package media ingests dropped files into the media library.
package media

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyFile files without content are not ingested
	ErrEmptyFile = errors.New("empty file")
	// ErrNotFound unknown attachment
	ErrNotFound = errors.New("attachment not found")
)

// File is a dropped file
type File struct {
	Name string
	// Type is the mime type, e.g. image/png
	Type string
	Data []byte
}

// IsImage reports whether the mime type is an image type
func (f File) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// Media is an ingested, server side resource
type Media struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"url"`
}

// Ingester uploads a file and returns the created resource. Implementations
// must not retry.
type Ingester interface {
	Ingest(ctx context.Context, file File) (Media, error)
}

// IngesterFunc adapts a function to Ingester
type IngesterFunc func(ctx context.Context, file File) (Media, error)

func (f IngesterFunc) Ingest(ctx context.Context, file File) (Media, error) {
	return f(ctx, file)
}
