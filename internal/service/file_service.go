package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// sniffLen is how much of an upload is read to detect its real type.
const sniffLen = 3072

// uploadType is an accepted extension: the content type stored for it and the
// sniffed types that may back it. Office formats sniff as their container
// (zip or OLE) when the detector cannot look deep enough.
type uploadType struct {
	contentType string
	sniffed     []string
}

var uploadTypes = map[string]uploadType{
	".jpg":  {"image/jpeg", []string{"image/jpeg"}},
	".jpeg": {"image/jpeg", []string{"image/jpeg"}},
	".png":  {"image/png", []string{"image/png"}},
	".gif":  {"image/gif", []string{"image/gif"}},
	".pdf":  {"application/pdf", []string{"application/pdf"}},
	".doc":  {"application/msword", []string{"application/msword", "application/x-ole-storage"}},
	".xls":  {"application/vnd.ms-excel", []string{"application/vnd.ms-excel", "application/x-ole-storage"}},
	".ppt":  {"application/vnd.ms-powerpoint", []string{"application/vnd.ms-powerpoint", "application/x-ole-storage"}},
	".docx": {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		[]string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	},
	".xlsx": {
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		[]string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	},
	".pptx": {
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		[]string{"application/vnd.openxmlformats-officedocument.presentationml.presentation", "application/zip"},
	},
}

// FileService validates uploads and moves them in and out of the blob store.
type FileService struct {
	store    storage.Store
	maxBytes int64
	maxFiles int
	log      zerolog.Logger
}

// NewFileService creates a new FileService.
func NewFileService(store storage.Store, maxBytes int64, maxFiles int, log zerolog.Logger) *FileService {
	return &FileService{
		store:    store,
		maxBytes: maxBytes,
		maxFiles: maxFiles,
		log:      log.With().Str("component", "file_service").Logger(),
	}
}

// MaxBytes is the per-file upload limit.
func (s *FileService) MaxBytes() int64 { return s.maxBytes }

// Upload stores a single multipart file for the actor.
func (s *FileService) Upload(ctx context.Context, actor Actor, fh *multipart.FileHeader) (*model.File, error) {
	if err := s.precheck(fh); err != nil {
		return nil, err
	}
	return s.put(ctx, actor, fh)
}

// UploadMany stores several files. Every file is checked before any is stored,
// and already stored files are removed when a later one fails.
func (s *FileService) UploadMany(ctx context.Context, actor Actor, fhs []*multipart.FileHeader) ([]*model.File, error) {
	if len(fhs) == 0 {
		return nil, ErrFileRequired
	}
	if len(fhs) > s.maxFiles {
		return nil, ErrTooManyFiles
	}
	for _, fh := range fhs {
		if err := s.precheck(fh); err != nil {
			return nil, err
		}
	}

	stored := make([]*model.File, 0, len(fhs))
	for _, fh := range fhs {
		f, err := s.put(ctx, actor, fh)
		if err != nil {
			s.rollback(ctx, stored)
			return nil, err
		}
		stored = append(stored, f)
	}
	return stored, nil
}

// Open streams a stored file. The caller closes the reader.
func (s *FileService) Open(ctx context.Context, id string) (*model.File, io.ReadCloser, error) {
	f, rc, err := s.store.Open(ctx, id)
	if err != nil {
		return nil, nil, mapStorageErr(err)
	}
	return f, rc, nil
}

// Delete removes a file. Only the uploader or an admin may delete.
func (s *FileService) Delete(ctx context.Context, actor Actor, id string) error {
	f, err := s.store.Stat(ctx, id)
	if err != nil {
		return mapStorageErr(err)
	}
	if !canWrite(actor, f.UploadedBy) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStorageErr(err)
	}
	s.log.Info().Str("file_id", id).Msg("File deleted")
	return nil
}

// List returns a filtered page of every stored file.
func (s *FileService) List(ctx context.Context, f model.FileFilter) ([]model.File, *response.Pagination, error) {
	f.PageQuery = f.Normalize()
	files, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if files == nil {
		files = []model.File{}
	}
	return files, paginate(f.PageQuery, total), nil
}

// ListMine returns a page of the actor's uploads.
func (s *FileService) ListMine(ctx context.Context, actor Actor, p model.PageQuery) ([]model.File, *response.Pagination, error) {
	return s.List(ctx, model.FileFilter{PageQuery: p, UploadedBy: actor.UserID.String()})
}

func (s *FileService) precheck(fh *multipart.FileHeader) error {
	if fh == nil {
		return ErrFileRequired
	}
	if _, ok := uploadTypes[strings.ToLower(filepath.Ext(fh.Filename))]; !ok {
		return ErrUnsupportedFile
	}
	if fh.Size > s.maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// put sniffs the head of the upload against its extension, then streams the
// whole file into the store.
func (s *FileService) put(ctx context.Context, actor Actor, fh *multipart.FileHeader) (*model.File, error) {
	ut := uploadTypes[strings.ToLower(filepath.Ext(fh.Filename))]

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !sniffMatches(mimetype.Detect(head), ut.sniffed) {
		return nil, ErrUnsupportedFile
	}

	name, err := storage.NewFilename(fh.Filename)
	if err != nil {
		return nil, err
	}
	f, err := s.store.Put(ctx, storage.PutInput{
		Filename:     name,
		OriginalName: filepath.Base(fh.Filename),
		ContentType:  ut.contentType,
		UploadedBy:   actor.UserID,
	}, io.MultiReader(bytes.NewReader(head), src))
	if err != nil {
		s.log.Error().Err(err).Str("original_name", fh.Filename).Msg("blob store write failed")
		return nil, err
	}

	s.log.Info().
		Str("file_id", f.ID).
		Str("content_type", f.ContentType).
		Int64("size", f.Size).
		Msg("File uploaded")
	return f, nil
}

func (s *FileService) rollback(ctx context.Context, stored []*model.File) {
	for _, f := range stored {
		if err := s.store.Delete(ctx, f.ID); err != nil {
			s.log.Warn().Err(err).Str("file_id", f.ID).Msg("failed to roll back upload")
		}
	}
}

// sniffMatches walks the detected type and its parents looking for an accepted type.
func sniffMatches(detected *mimetype.MIME, accepted []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, a := range accepted {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

func mapStorageErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
		return ErrFileNotFound
	}
	return err
}
