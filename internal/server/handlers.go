package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/conversation"
	"github.com/spigell/college-counselor/internal/profile"
	"github.com/spigell/college-counselor/internal/ranking"
	"github.com/spigell/college-counselor/internal/session"
	"github.com/spigell/college-counselor/internal/storage"
)

// Handler serves the counseling API.
type Handler struct {
	driver *conversation.Driver
	logger *zap.Logger
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Chat runs one counseling turn.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := h.driver.Handle(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.respondDriverError(c, err)
		return
	}
	RespondOK(c, res)
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// Reset drops a session and its stored document. Unknown sessions are not an error.
func (h *Handler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, errors.New("session_id is required"))
		return
	}

	if _, err := h.driver.Reset(c.Request.Context(), req.SessionID); err != nil {
		h.respondDriverError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "reset", "session_id": req.SessionID})
}

type profileResponse struct {
	SessionID       string                   `json:"session_id"`
	Profile         *profile.Profile         `json:"profile"`
	Ready           bool                     `json:"sufficient_info"`
	History         []profile.HistoryEntry   `json:"extraction_history"`
	Recommendations []ranking.Recommendation `json:"recommendations"`
}

// Profile returns the current profile of a session.
func (h *Handler) Profile(c *gin.Context) {
	snap, ok := h.driver.Snapshot(c.Param("id"))
	if !ok {
		RespondError(c, http.StatusNotFound, CodeNotFound, conversation.ErrSessionNotFound)
		return
	}
	RespondOK(c, profileResponse{
		SessionID:       snap.SessionID,
		Profile:         snap.Profile,
		Ready:           snap.Ready,
		History:         snap.History,
		Recommendations: snap.Recommendations,
	})
}

// Download serves the session document as a JSON attachment.
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.driver.Document(c.Request.Context(), id)
	if err != nil {
		h.respondDriverError(c, err)
		return
	}

	data, err := storage.Encode(doc)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, CodeInternal, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.FileName(id)))
	c.Data(http.StatusOK, "application/json", data)
}

// Sessions lists in-memory sessions.
func (h *Handler) Sessions(c *gin.Context) {
	sessions := h.driver.Sessions()
	RespondOK(c, gin.H{"sessions": sessions, "count": len(sessions)})
}

// Analytics returns aggregate session statistics.
func (h *Handler) Analytics(c *gin.Context) {
	RespondOK(c, h.driver.Analytics())
}

// Colleges returns the catalog.
func (h *Handler) Colleges(c *gin.Context) {
	entries := h.driver.Catalog().Entries()
	RespondOK(c, gin.H{"colleges": entries, "count": len(entries)})
}

type recommendationsRequest struct {
	SessionID  string           `json:"session_id"`
	Profile    *profile.Profile `json:"profile"`
	MaxResults int              `json:"max_results"`
}

// Recommendations ranks the catalog for a session or a directly supplied profile.
func (h *Handler) Recommendations(c *gin.Context) {
	var req recommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.MaxResults < 0 {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, errors.New("max_results must not be negative"))
		return
	}

	var recs []ranking.Recommendation
	switch {
	case strings.TrimSpace(req.SessionID) != "":
		var err error
		recs, err = h.driver.RecommendFor(req.SessionID, req.MaxResults)
		if err != nil {
			h.respondDriverError(c, err)
			return
		}
	case req.Profile != nil:
		if err := req.Profile.Validate(); err != nil {
			RespondError(c, http.StatusBadRequest, CodeInvalid, err)
			return
		}
		recs = h.driver.Recommend(req.Profile, req.MaxResults)
	default:
		RespondError(c, http.StatusBadRequest, CodeBadRequest, errors.New("session_id or profile is required"))
		return
	}

	RespondOK(c, gin.H{"recommendations": recs, "count": len(recs)})
}

func (h *Handler) respondDriverError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage), errors.Is(err, session.ErrInvalidID):
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
	case errors.Is(err, conversation.ErrSessionNotFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, err)
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, CodeInternal, errors.New("internal error"))
	}
}
