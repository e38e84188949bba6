package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jinford/meai/internal/core/chat"
)

type chatResponse struct {
	ID            uuid.UUID  `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

type chatMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toChatResponse(c *chat.Chat) chatResponse {
	return chatResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Title:         c.Title,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		LastMessageAt: c.LastMessageAt,
	}
}

func toChatMessageResponse(m *chat.Message) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type createChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Title  string `json:"title"`
}

// handleCreateChat はユーザーの新しいチャットを作成する
func (s *Server) handleCreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.container.ChatService.CreateChat(c.Request.Context(), req.UserID, req.Title)
	if errors.Is(err, chat.ErrUserIDRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("chat creation failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}

	c.JSON(http.StatusOK, toChatResponse(created))
}

// handleListChats はユーザーの削除されていないチャットの一覧を返す
func (s *Server) handleListChats(c *gin.Context) {
	chats, err := s.container.ChatService.ListChats(c.Request.Context(), c.Query("user_id"), 0)
	if errors.Is(err, chat.ErrUserIDRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("chat listing failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chats"})
		return
	}

	out := make([]chatResponse, 0, len(chats))
	for _, ch := range chats {
		out = append(out, toChatResponse(ch))
	}
	c.JSON(http.StatusOK, gin.H{"chats": out})
}

// handleDeleteChat はユーザーのチャットをソフトデリートする
func (s *Server) handleDeleteChat(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat id must be a UUID"})
		return
	}

	err = s.container.ChatService.DeleteChat(c.Request.Context(), c.Query("user_id"), chatID)
	if errors.Is(err, chat.ErrUserIDRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, chat.ErrChatNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if err != nil {
		s.logger.Error("chat deletion failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// handleChatMessages はユーザーのチャットのメッセージ一覧を返す
func (s *Server) handleChatMessages(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat id must be a UUID"})
		return
	}

	messages, err := s.container.ChatService.Messages(c.Request.Context(), c.Query("user_id"), chatID)
	if errors.Is(err, chat.ErrUserIDRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, chat.ErrChatNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if err != nil {
		s.logger.Error("chat message listing failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	out := make([]chatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toChatMessageResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

type appendMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// handleAppendChatMessage はユーザーのチャットにメッセージを追記する
func (s *Server) handleAppendChatMessage(c *gin.Context) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat id must be a UUID"})
		return
	}

	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := s.container.ChatService.AppendMessage(c.Request.Context(), req.UserID, chatID, req.Role, req.Content)
	if errors.Is(err, chat.ErrUserIDRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, chat.ErrChatNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if errors.Is(err, chat.ErrInvalidRole) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("chat message append failed", "requestID", c.GetString("requestID"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to append message"})
		return
	}

	c.JSON(http.StatusOK, toChatMessageResponse(m))
}
