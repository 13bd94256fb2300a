package api

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sheasmith19/ezapp/internal/api/middleware"
	"github.com/sheasmith19/ezapp/internal/errcode"
	"github.com/sheasmith19/ezapp/internal/library"
	"github.com/sheasmith19/ezapp/internal/resume"
)

const maxSaveBodyBytes = 2 << 20

//go:embed schema/save_request.schema.json
var saveRequestSchemaJSON string

var saveRequestSchema = mustCompileSchema(saveRequestSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile save request schema: %v", err))
	}
	return s
}

// ResumeHandler serves the résumé routes for the authenticated user.
type ResumeHandler struct {
	library *library.Service
}

// NewResumeHandler wires the handler to the résumé library.
func NewResumeHandler(lib *library.Service) *ResumeHandler {
	return &ResumeHandler{library: lib}
}

type saveResumeRequest struct {
	XML      string          `json:"xml"`
	SaveName string          `json:"save_name"`
	Margins  *resume.Margins `json:"margins"`
}

type saveResumeResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Key       string `json:"key"`
	XMLPath   string `json:"xml_path"`
	PDFPath   string `json:"pdf_path"`
	Committed bool   `json:"committed"`

	Substituted string `json:"substituted_characters,omitempty"`
}

// validateSaveRequest checks the raw body against the request schema and decodes it.
func validateSaveRequest(body []byte) (saveResumeRequest, error) {
	result, err := saveRequestSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return saveResumeRequest{}, errors.New("request body is not valid JSON")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return saveResumeRequest{}, fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
	}

	var req saveResumeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return saveResumeRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// SaveResume parses, renders and stores one résumé.
func (h *ResumeHandler) SaveResume(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSaveBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, errcode.ValidationError, "request body too large")
			return
		}
		BadRequest(c, errcode.ValidationError, "failed to read request body")
		return
	}

	req, err := validateSaveRequest(body)
	if err != nil {
		BadRequest(c, errcode.ValidationError, err.Error())
		return
	}

	res, err := h.library.Save(c.Request.Context(), userID, req.SaveName, req.XML, req.Margins)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.LoggerFromContext(c).Info("resume saved",
		slog.String("key", res.Key),
		slog.Bool("committed", res.Committed),
	)
	c.JSON(http.StatusCreated, saveResumeResponse{
		Status:    "success",
		Message:   "Resume saved: " + res.Key,
		Key:       res.Key,
		XMLPath:   userRelative(res.XMLPath),
		PDFPath:   userRelative(res.PDFPath),
		Committed: res.Committed,

		Substituted: res.Substituted,
	})
}

// userRelative trims an artifact path to <kind>/<file>.
func userRelative(p string) string {
	return filepath.ToSlash(filepath.Join(filepath.Base(filepath.Dir(p)), filepath.Base(p)))
}

// ListResumes returns the user's PDF file names.
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return
	}

	names, err := h.library.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumes": names})
}

// Resumes is the lightweight listing used by the browser extension.
func (h *ResumeHandler) Resumes(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return
	}

	entries, err := h.library.Entries(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetResume returns the stored résumé as an editable record.
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return
	}

	rec, err := h.library.Get(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteResume removes the XML and PDF of one résumé.
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return
	}

	res, err := h.library.Delete(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"message":       "Deleted resume: " + res.Key,
		"deleted_files": res.DeletedFiles,
	})
}

// DownloadResume streams the stored PDF as an attachment.
func (h *ResumeHandler) DownloadResume(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return
	}

	rc, info, err := h.library.Open(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": info.Name})
	c.DataFromReader(http.StatusOK, info.Size, "application/pdf", rc, map[string]string{
		"Content-Disposition": disposition,
	})
}
