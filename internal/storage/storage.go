// Package storage keeps uploaded files in an external blob bucket.
// The bucket is constructed once at startup and handed to whoever needs it.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrInvalidID = errors.New("invalid file id")
)

// PutInput describes a blob about to be written.
type PutInput struct {
	Filename     string
	OriginalName string
	ContentType  string
	UploadedBy   uuid.UUID
}

// Store is a blob bucket with per-file metadata.
type Store interface {
	Put(ctx context.Context, in PutInput, r io.Reader) (*model.File, error)
	Open(ctx context.Context, id string) (*model.File, io.ReadCloser, error)
	Stat(ctx context.Context, id string) (*model.File, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f model.FileFilter) ([]model.File, int, error)
}

// NewFilename returns a random hex name that keeps the original extension.
func NewFilename(originalName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + strings.ToLower(filepath.Ext(originalName)), nil
}

// countingReader tracks how many bytes passed through.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// fileMetadata is the metadata document stored next to each blob.
type fileMetadata struct {
	OriginalName string    `bson:"originalName"`
	UploadedBy   string    `bson:"uploadedBy"`
	UploadDate   time.Time `bson:"uploadDate"`
	ContentType  string    `bson:"contentType"`
}

func (m fileMetadata) uploader() uuid.UUID {
	id, err := uuid.Parse(m.UploadedBy)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func matchesFilter(f model.File, filter model.FileFilter) bool {
	if filter.UploadedBy != "" && f.UploadedBy.String() != filter.UploadedBy {
		return false
	}
	if filter.ContentType != "" &&
		!strings.Contains(strings.ToLower(f.ContentType), strings.ToLower(filter.ContentType)) {
		return false
	}
	return true
}
