// Package service holds the business rules behind every HTTP route.
package service

import (
	"errors"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/google/uuid"
)

// Domain errors shared across services.
var (
	ErrForbidden        = errors.New("caller may not act on this resource")
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrClassNotFound    = errors.New("class not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrUnsupportedFile  = errors.New("unsupported file type")
	ErrFileTooLarge     = errors.New("file exceeds the upload limit")
	ErrTooManyFiles     = errors.New("too many files")
	ErrFileRequired     = errors.New("no file uploaded")
)

// Actor is the authenticated caller a service call runs on behalf of.
type Actor struct {
	UserID  uuid.UUID
	Subject string
	Role    model.Role
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// canWrite is the single ownership rule: owners and admins may modify.
func canWrite(a Actor, ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

// canRead extends canWrite with public visibility.
func canRead(a Actor, ownerID uuid.UUID, public bool) bool {
	return public || canWrite(a, ownerID)
}

func paginate(p model.PageQuery, total int) *response.Pagination {
	return response.NewPagination(p.Page, p.PerPage, total)
}
