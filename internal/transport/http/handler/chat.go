package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"promptgate/internal/app"
	"promptgate/internal/transport/http/middleware"
	"promptgate/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	// model_id is optional: a chat may be opened before a model is chosen,
	// the first answered question binds one.
	modelID := parseUintQuery(c, "model_id")

	chat, err := h.chatService.CreateChat(user.ID, modelID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "create chat failed")
		return
	}

	response.OK(c, gin.H{"chat_id": chat.ID})
}

func (h *ChatHandler) GetChats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	chats, err := h.chatService.ListChats(user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "list chats failed")
		return
	}

	response.OK(c, gin.H{"chats": chats})
}

func (h *ChatHandler) GetChatData(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	chatID := parseUintQuery(c, "chat_id")
	if chatID == 0 {
		response.Fail(c, http.StatusBadRequest, "chat_id is required")
		return
	}

	messages, err := h.chatService.GetChatData(user.ID, chatID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Fail(c, http.StatusNotFound, "Chat not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, "load chat data failed")
		}
		return
	}

	response.OK(c, gin.H{"chat_data": messages})
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	chatID := parseUintQuery(c, "chat_id")
	if chatID == 0 {
		response.Fail(c, http.StatusBadRequest, "chat_id is required")
		return
	}

	if err := h.chatService.DeleteChat(user.ID, chatID); err != nil {
		switch {
		case errors.Is(err, app.ErrChatNotFound):
			response.Fail(c, http.StatusNotFound, "Chat not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, "delete chat failed")
		}
		return
	}

	response.OK(c, gin.H{"message": "Chat deleted"})
}

func parseUintQuery(c *gin.Context, name string) uint {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
