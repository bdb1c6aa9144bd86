package handler

import (
	"io"
	"net/http"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/akilliyazili/yazili-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// QuestionHandler handles the question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	maxExtractBytes int64
}

// NewQuestionHandler creates a new QuestionHandler. maxExtractBytes caps the
// size of documents sent to the extract endpoint.
func NewQuestionHandler(questionService *service.QuestionService, maxExtractBytes int64) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, maxExtractBytes: maxExtractBytes}
}

// ListQuestions godoc
// GET /api/questions
// Lists the caller's questions, filtered by subject, level and type.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var f model.QuestionFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, pagination, err := h.questionService.List(c.Request.Context(), a, f)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// GetQuestion godoc
// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	q, err := h.questionService.Get(c.Request.Context(), a, id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// CreateQuestion godoc
// POST /api/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), a, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/questions/:id
// Partial update; owner or admin only.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), a, id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), a, id); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Soru silindi."})
}

// GenerateQuestions godoc
// POST /api/questions/generate
// Generates questions from the selected source and saves them for the caller.
func (h *QuestionHandler) GenerateQuestions(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.GenerateQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.Generate(c.Request.Context(), a, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"questions": questions})
}

// ExtractQuestions godoc
// POST /api/questions/extract
// Reads questions out of an uploaded image or PDF. Nothing is stored.
func (h *QuestionHandler) ExtractQuestions(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if fh.Size > h.maxExtractBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxExtractBytes+1))
	if err != nil {
		fail(c, err)
		return
	}
	if int64(len(data)) > h.maxExtractBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	result, err := h.questionService.Extract(c.Request.Context(), data)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
