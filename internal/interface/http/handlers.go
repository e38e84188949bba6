package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/jinford/meai/internal/core/answer"
	"github.com/jinford/meai/internal/core/feedback"
)

// allowedModes はAPIで受け付ける回答モード
var allowedModes = map[string]bool{
	"mode_1": true,
	"mode_2": true,
}

type askRequest struct {
	Message       string  `json:"message" binding:"required"`
	Mode          string  `json:"mode" binding:"required"`
	SessionID     *string `json:"session_id"`
	Clarification *string `json:"clarification"`
	TesterLabel   *string `json:"tester_label"`
}

// handleAsk は質問応答パイプラインを実行する
func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !allowedModes[req.Mode] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown mode: %s", req.Mode)})
		return
	}

	params := answer.Params{
		Mode:    req.Mode,
		Message: req.Message,
	}
	if req.SessionID != nil {
		sid, err := uuid.Parse(*req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id must be a UUID"})
			return
		}
		params.SessionID = mo.Some(sid)
	}
	if req.Clarification != nil {
		params.Clarification = mo.Some(*req.Clarification)
	}
	if req.TesterLabel != nil {
		params.TesterLabel = mo.Some(*req.TesterLabel)
	}

	result, err := s.container.AnswerService.Answer(c.Request.Context(), params)
	if err != nil {
		s.logger.Error("ask failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type feedbackRequest struct {
	SessionID string  `json:"session_id" binding:"required"`
	MessageID *string `json:"message_id"`
	Score     *int    `json:"score"`
	Comment   string  `json:"comment"`
}

// handleFeedback は回答へのフィードバックを記録する
func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id must be a UUID"})
		return
	}

	entry := feedback.Entry{
		SessionID: sid,
		Score:     req.Score,
		Comment:   req.Comment,
	}
	if req.MessageID != nil {
		mid, err := uuid.Parse(*req.MessageID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message_id must be a UUID"})
			return
		}
		entry.MessageID = &mid
	}

	id, err := s.container.FeedbackService.Record(c.Request.Context(), entry)
	if errors.Is(err, feedback.ErrInvalidScore) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("feedback failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// handleNotesDownload はセッションのエンジニアリングノートをMarkdownで返す
func (s *Server) handleNotesDownload(c *gin.Context) {
	sid, err := uuid.Parse(c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id must be a UUID"})
		return
	}

	notes, err := s.container.NotesService.BuildNotes(c.Request.Context(), sid)
	if err != nil {
		s.logger.Error("notes generation failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build notes"})
		return
	}

	filename := fmt.Sprintf("engineering_notes_%s.md", sid)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(notes))
}
