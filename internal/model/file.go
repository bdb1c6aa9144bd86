package model

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata of a blob kept in the file bucket.
type File struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
	UploadDate   time.Time `json:"upload_date"`
}

// FileFilter narrows the file listing. ContentType matches as a
// case-insensitive substring.
type FileFilter struct {
	PageQuery
	UploadedBy  string `form:"uploaded_by" binding:"omitempty,uuid"`
	ContentType string `form:"content_type" binding:"omitempty,max=100"`
}
