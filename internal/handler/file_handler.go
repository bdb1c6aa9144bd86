package handler

import (
	"mime"
	"net/http"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/akilliyazili/yazili-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// FileHandler handles the file bucket endpoints.
type FileHandler struct {
	fileService *service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFile godoc
// POST /api/files/upload
// Stores a single file sent in the "file" field.
func (h *FileHandler) UploadFile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), a, fh)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"file": f})
}

// UploadFiles godoc
// POST /api/files/upload/multiple
// Stores every file sent in the "files" field. Either all are stored or none.
func (h *FileHandler) UploadFiles(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	files, err := h.fileService.UploadMany(c.Request.Context(), a, form.File["files"])
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"files": files})
}

// DownloadFile godoc
// GET /api/files/download/:id
func (h *FileHandler) DownloadFile(c *gin.Context) {
	h.stream(c, "attachment")
}

// ViewFile godoc
// GET /api/files/view/:id
func (h *FileHandler) ViewFile(c *gin.Context) {
	h.stream(c, "inline")
}

func (h *FileHandler) stream(c *gin.Context, disposition string) {
	f, rc, err := h.fileService.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, f.Size, f.ContentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType(disposition, map[string]string{"filename": f.OriginalName}),
	})
}

// DeleteFile godoc
// DELETE /api/files/:id
// Uploader or admin only.
func (h *FileHandler) DeleteFile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Dosya silindi."})
}

// ListFiles godoc
// GET /api/files/list
// Lists every stored file, filtered by uploader and content type.
func (h *FileHandler) ListFiles(c *gin.Context) {
	var f model.FileFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	files, pagination, err := h.fileService.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"files": files}, pagination)
}

// MyFiles godoc
// GET /api/files/my-files
func (h *FileHandler) MyFiles(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var p model.PageQuery
	if fields := validator.BindQuery(c, &p); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	files, pagination, err := h.fileService.ListMine(c.Request.Context(), a, p)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"files": files}, pagination)
}
