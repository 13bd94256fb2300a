package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheasmith19/ezapp/internal/api/middleware"
	"github.com/sheasmith19/ezapp/internal/errcode"
	"github.com/sheasmith19/ezapp/internal/library"
	"github.com/sheasmith19/ezapp/internal/pdf"
	"github.com/sheasmith19/ezapp/internal/resume"
	"github.com/sheasmith19/ezapp/internal/storage"
)

func Error(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, code, msg string) { Error(c, http.StatusBadRequest, code, msg) }
func NotFound(c *gin.Context, msg string)         { Error(c, http.StatusNotFound, errcode.NotFound, msg) }
func Internal(c *gin.Context, code, msg string)   { Error(c, http.StatusInternalServerError, code, msg) }

// writeError maps a service error onto its status and code. Server-side failures are
// logged in full and answered with a short message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, resume.ErrMalformedDocument):
		BadRequest(c, errcode.MalformedDocument, err.Error())
	case errors.Is(err, resume.ErrInvalidMargins):
		BadRequest(c, errcode.InvalidMargins, err.Error())
	case errors.Is(err, resume.ErrInvalidKey), errors.Is(err, storage.ErrInvalidName):
		BadRequest(c, errcode.InvalidKey, err.Error())
	case errors.Is(err, library.ErrNotFound):
		NotFound(c, "resume not found")
	case errors.Is(err, storage.ErrInvalidUser):
		middleware.AbortUnauthorized(c)
	case errors.Is(err, pdf.ErrRenderFailure):
		middleware.LoggerFromContext(c).Error("render failed", slog.Any("error", err))
		Internal(c, errcode.RenderFailure, err.Error())
	case errors.Is(err, storage.ErrStorageIO):
		middleware.LoggerFromContext(c).Error("storage failure", slog.Any("error", err))
		Internal(c, errcode.StorageIO, "failed to access resume storage")
	default:
		middleware.LoggerFromContext(c).Error("unexpected error", slog.Any("error", err))
		Internal(c, errcode.Internal, "internal server error")
	}
}
