package handler

import (
	"errors"
	"net/http"

	"github.com/akilliyazili/yazili-backend/internal/generator"
	"github.com/akilliyazili/yazili-backend/internal/identity"
	"github.com/akilliyazili/yazili-backend/internal/middleware"
	"github.com/akilliyazili/yazili-backend/internal/ocr"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

var errorMappings = []errorMapping{
	{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
	{service.ErrUserNotFound, http.StatusNotFound, response.ErrUserNotFound},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrQuestionNotFound},
	{service.ErrExamNotFound, http.StatusNotFound, response.ErrExamNotFound},
	{service.ErrClassNotFound, http.StatusNotFound, response.ErrClassNotFound},
	{service.ErrFileNotFound, http.StatusNotFound, response.ErrFileNotFound},
	{service.ErrInvalidClassCode, http.StatusNotFound, response.ErrInvalidClassCode},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{identity.ErrInvalidToken, http.StatusUnauthorized, response.ErrTokenInvalid},
	{service.ErrCredentialsMissing, http.StatusBadRequest, response.ErrValidation},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{repository.ErrConflict, http.StatusConflict, response.ErrConflict},
	{service.ErrExamNotAssigned, http.StatusForbidden, response.ErrExamNotAssigned},
	{service.ErrAlreadySubmitted, http.StatusConflict, response.ErrAlreadySubmitted},
	{service.ErrAnswerOutOfBounds, http.StatusBadRequest, response.ErrAnswerOutOfBounds},
	{service.ErrFileRequired, http.StatusBadRequest, response.ErrFileRequired},
	{service.ErrUnsupportedFile, http.StatusBadRequest, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	{service.ErrTooManyFiles, http.StatusBadRequest, response.ErrTooManyFiles},
	{generator.ErrUnknownSource, http.StatusBadRequest, response.ErrUnknownSource},
	{generator.ErrUnavailable, http.StatusServiceUnavailable, response.ErrServiceDisabled},
	{ocr.ErrDisabled, http.StatusServiceUnavailable, response.ErrServiceDisabled},
	{service.ErrNoQuestions, http.StatusInternalServerError, response.ErrNoQuestions},
}

// fail maps a service error to its status and code. Generation failures carry
// the upstream message as detail; anything unknown is a 500.
func fail(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}

	if errors.Is(err, generator.ErrNoJSONArray) || errors.Is(err, generator.ErrInvalidJSON) {
		_ = c.Error(err)
		response.FailWithDetail(c, http.StatusInternalServerError, response.ErrAIParse, err.Error())
		return
	}
	var upstream *generator.UpstreamError
	if errors.As(err, &upstream) {
		_ = c.Error(err)
		response.FailWithDetail(c, http.StatusInternalServerError, response.ErrUpstream, upstream.Err.Error())
		return
	}

	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// parseID reads a uuid path parameter, answering 400 when malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated caller, answering 401 when absent.
func actor(c *gin.Context) (service.Actor, bool) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return service.Actor{}, false
	}
	return p.Actor(), true
}
