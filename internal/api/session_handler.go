package api

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"gamesense/app/internal/domain"
	"gamesense/app/internal/service"

	"github.com/gin-gonic/gin"
)

// DefaultMaxUploadBytes caps a clip upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 200 << 20

// SessionHandler serves the clip upload and session history endpoints.
type SessionHandler struct {
	sessionService service.SessionService
	maxUploadBytes int64
}

// NewSessionHandler creates a SessionHandler. A non-positive limit means
// DefaultMaxUploadBytes.
func NewSessionHandler(sessionService service.SessionService, maxUploadBytes int64) *SessionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &SessionHandler{sessionService: sessionService, maxUploadBytes: maxUploadBytes}
}

// SessionResponse is a session as returned to its owner.
type SessionResponse struct {
	ID                string           `json:"id"`
	VideoOriginalName string           `json:"video_original_name"`
	VideoURL          string           `json:"video_url"`
	Role              string           `json:"role"`
	Skill             string           `json:"skill"`
	Rating            int              `json:"rating"`
	CustomPrompt      string           `json:"custom_prompt"`
	PromptText        string           `json:"prompt_text"`
	Feedback          string           `json:"feedback"`
	Highlights        []string         `json:"highlights"`
	CreatedAt         domain.Timestamp `json:"created_at"`
}

func mapSessionToResponse(s *domain.Session) SessionResponse {
	highlights := s.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	return SessionResponse{
		ID:                s.ID,
		VideoOriginalName: s.VideoOriginalName,
		VideoURL:          s.VideoURL,
		Role:              s.Role,
		Skill:             s.Skill,
		Rating:            s.Rating,
		CustomPrompt:      s.CustomPrompt,
		PromptText:        s.PromptText,
		Feedback:          s.Feedback,
		Highlights:        highlights,
		CreatedAt:         s.CreatedAt,
	}
}

// CreateSession godoc
// @Summary Upload a clip and get feedback
// @Tags Sessions
// @Security BearerAuth
// @Accept multipart/form-data
// @Param video formData file true "Clip (.mp4 or .mov)"
// @Param role formData string true "Player role"
// @Param skill formData string true "Skill focus"
// @Param rating formData int true "Session rating 1-10"
// @Param note formData string false "Custom prompt"
// @Success 201 {object} SessionResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	fileHeader, err := c.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Upload is too large")
			return
		}
		abortWithError(c, http.StatusBadRequest, "Please upload a video first.")
		return
	}
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Rating must be a whole number between 1 and 10")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	session, err := h.sessionService.Analyze(c.Request.Context(), service.AnalyzeInput{
		User:     email,
		FileName: fileHeader.Filename,
		Data:     data,
		Role:     c.PostForm("role"),
		Skill:    c.PostForm("skill"),
		Rating:   rating,
		Note:     c.PostForm("note"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapSessionToResponse(session))
}

// ListSessions godoc
// @Summary Session history, newest first
// @Tags Sessions
// @Security BearerAuth
// @Success 200 {array} SessionResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, err := h.sessionService.List(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, mapSessionToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession godoc
// @Summary One session of the current player
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} gin.H
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	session, err := h.sessionService.Get(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSessionToResponse(session))
}

// DeleteSession godoc
// @Summary Delete a session and its clip
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} gin.H
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.sessionService.Delete(c.Request.Context(), email, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadPDF godoc
// @Summary Session feedback as PDF
// @Tags Sessions
// @Security BearerAuth
// @Produce application/pdf
// @Router /sessions/{id}/pdf [get]
func (h *SessionHandler) DownloadPDF(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	pdf, err := h.sessionService.PDF(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": pdf.FileName}))
	c.Data(http.StatusOK, "application/pdf", pdf.Data)
}

// GetVideo redirects to a playable URL for the clip.
func (h *SessionHandler) GetVideo(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	u, err := h.sessionService.VideoURL(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, u)
}

// GetCatalog lists roles and the skills offered for each.
func (h *SessionHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionService.Catalog())
}

func (h *SessionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrVideoUnavailable):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyUpload),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrUnknownRoleSkill),
		errors.Is(err, service.ErrUnsupportedFormat):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: session request: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
