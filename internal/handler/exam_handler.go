package handler

import (
	"mime"
	"net/http"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/pdf"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/akilliyazili/yazili-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ExamHandler handles exam endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/exams
// Lists exams owned by or assigned to the caller.
func (h *ExamHandler) ListExams(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var f model.ExamFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exams, pagination, err := h.examService.List(c.Request.Context(), a, f)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// GetExam godoc
// GET /api/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), a, id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// CreateExam godoc
// POST /api/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), a, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/exams/:id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), a, id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), a, id); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Sınav silindi."})
}

// GenerateExam godoc
// POST /api/exams/generate
// Builds and saves an exam from generated questions.
func (h *ExamHandler) GenerateExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.GenerateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Generate(c.Request.Context(), a, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// ExportExam godoc
// GET /api/exams/:id/export
// Streams the exam as a printable PDF attachment.
func (h *ExamHandler) ExportExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	exam, doc, err := h.examService.Export(c.Request.Context(), a, id)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": pdf.Filename(exam.Title),
	}))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// SubmitExam godoc
// POST /api/exams/:id/submit
// Grades the caller's answers and queues the submission for persistence.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.examService.Submit(c.Request.Context(), a, id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"submission": sub})
}
