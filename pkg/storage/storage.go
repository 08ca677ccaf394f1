package storage

import (
	"context"
	"io"
)

// UploadInput describes one object to archive.
type UploadInput struct {
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
	Metadata    map[string]string
}

// Service stores archived objects and returns their public location.
type Service interface {
	PutObject(ctx context.Context, in UploadInput) (string, error)
}
