package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/services"
)

// ChatHandler handles one-to-one messaging
type ChatHandler struct {
	chats *services.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chatService}
}

// RegisterChatRoutes registers chat routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chats", h.GetChatList)
	g.GET("/chats/:user_id/messages", h.GetMessages)
	g.POST("/chats/:user_id/messages", h.SendMessage)
	g.GET("/chats/:user_id/unseen-count", h.GetUnseenCount)
	g.POST("/chats/:user_id/seen", h.MarkSeen)
}

// GetChatList returns one row per counterpart with the latest message
func (h *ChatHandler) GetChatList(c echo.Context) error {
	list, err := h.chats.ChatList(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"chats": list})
}

// GetMessages returns the conversation with a user, oldest first
func (h *ChatHandler) GetMessages(c echo.Context) error {
	otherID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	skip, limit := skipParams(c)
	messages, err := h.chats.History(c.Request().Context(), getUserIDFromContext(c), otherID, int(skip), int(limit))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{
		"conversation_id": models.ConversationID(getUserIDFromContext(c), otherID),
		"messages":        messages,
	})
}

// SendMessage stores a message and notifies the receiver
func (h *ChatHandler) SendMessage(c echo.Context) error {
	otherID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.chats.Send(c.Request().Context(), getUserIDFromContext(c), otherID, req.Text)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, msg)
}

// GetUnseenCount counts messages from the user the caller has not seen
func (h *ChatHandler) GetUnseenCount(c echo.Context) error {
	otherID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	count, err := h.chats.UnseenCount(c.Request().Context(), getUserIDFromContext(c), otherID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkSeen acknowledges every message received from the user
func (h *ChatHandler) MarkSeen(c echo.Context) error {
	otherID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	marked, err := h.chats.MarkSeen(c.Request().Context(), getUserIDFromContext(c), otherID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"marked": marked})
}
