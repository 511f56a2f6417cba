package profiles

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-backend/internal/shared/server/middleware"
	"profile-backend/internal/shared/server/respond"
	"profile-backend/internal/shared/storage/object"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile/me", h.me)
	rg.POST("/profile", h.upsert)
	rg.POST("/profile/files", h.upload)
	rg.GET("/profile/files/:fileId", h.download)
	rg.DELETE("/profile/files/:fileId", h.delete)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	profile, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusBadRequest, "no_profile", "There is no profile for this user", nil)
			return
		}
		h.writeError(c, err, "failed to fetch profile")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(profile))
}

type upsertRequest struct {
	Company string `json:"company"`
}

func (h *Handler) upsert(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.Company = strings.TrimSpace(req.Company)
	if req.Company == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", []gin.H{
			{"field": "company", "message": "Company is required"},
		})
		return
	}

	profile, err := h.Svc.CreateOrUpdate(c.Request.Context(), userID, ProfileUpdate{Company: &req.Company})
	if err != nil {
		h.writeError(c, err, "failed to save profile")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(profile))
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	// The part is handed to the service as-is so the body streams into
	// object storage while it is still being received; nothing stages
	// the upload in memory or in a temp file.
	reader, err := c.Request.MultipartReader()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart body is required", nil)
		return
	}
	part, err := nextFilePart(reader)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	defer part.Close()

	profile, err := h.Svc.UploadFile(c.Request.Context(), userID, FileUpload{
		OriginalName: part.FileName(),
		Encoding:     part.Header.Get("Content-Transfer-Encoding"),
		ContentType:  part.Header.Get("Content-Type"),
		Body:         part,
	})
	if err != nil {
		h.writeError(c, err, "failed to upload file")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(profile))
}

// nextFilePart advances to the "file" form field, skipping any
// preceding value fields.
func nextFilePart(reader *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	fileID := c.Param("fileId")
	c.Set("fileId", fileID)

	rec, stream, err := h.Svc.OpenFile(c.Request.Context(), userID, fileID)
	if err != nil {
		h.writeError(c, err, "failed to download file")
		return
	}
	defer stream.Close()

	// Mime type and filename come from the stored metadata, never
	// re-derived from the storage key.
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", rec.OriginalName),
		"filename":            rec.OriginalName,
	}
	c.DataFromReader(http.StatusOK, rec.SizeBytes, rec.MimeType, stream, extraHeaders)
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	fileID := c.Param("fileId")
	c.Set("fileId", fileID)

	profile, err := h.Svc.DeleteFile(c.Request.Context(), userID, fileID)
	if err != nil {
		h.writeError(c, err, "failed to delete file")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(profile))
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds the upload limit", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrFileNotFound), errors.Is(err, object.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusBadRequest, "no_profile", "There is no profile for this user", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
