// Package storage archives rendered documents (payslips, P9 cards).
package storage

import (
	"context"
	"io"
)

type FileInfo struct {
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

type Store interface {
	Save(ctx context.Context, path string, file io.Reader, contentType string) (*FileInfo, error)
	Delete(ctx context.Context, path string) error
}

// Discard is used when archiving is disabled.
type Discard struct{}

func (Discard) Save(_ context.Context, path string, file io.Reader, contentType string) (*FileInfo, error) {
	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return nil, err
	}
	return &FileInfo{Path: path, FileSize: n, FileType: contentType}, nil
}

func (Discard) Delete(context.Context, string) error { return nil }
