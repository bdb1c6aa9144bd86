package handler

import (
	"net/http"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/akilliyazili/yazili-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ClassHandler handles class management and enrollment endpoints.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ListClasses godoc
// GET /api/classes
// Lists classes taught by or containing the caller.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var p model.PageQuery
	if fields := validator.BindQuery(c, &p); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classes, pagination, err := h.classService.List(c.Request.Context(), a, p)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"classes": classes}, pagination)
}

// GetClass godoc
// GET /api/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.Get(c.Request.Context(), a, id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// CreateClass godoc
// POST /api/classes
// Creates a class with a fresh join code.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), a, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// UpdateClass godoc
// PUT /api/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), a, id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// DeleteClass godoc
// DELETE /api/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.classService.Delete(c.Request.Context(), a, id); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Sınıf silindi."})
}

// JoinClass godoc
// POST /api/classes/join
// Enrolls the calling student with a class code.
func (h *ClassHandler) JoinClass(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Join(c.Request.Context(), a, req.Code)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// AssignExam godoc
// POST /api/classes/:id/exams
// Assigns an exam to every student of the class.
func (h *ClassHandler) AssignExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.AssignExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.AssignExam(c.Request.Context(), a, id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}
