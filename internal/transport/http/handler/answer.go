package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"promptgate/internal/ai"
	"promptgate/internal/app"
	"promptgate/internal/prompt"
	"promptgate/internal/transport/http/middleware"
	"promptgate/internal/transport/http/response"
)

type AnswerHandler struct {
	answerService *app.AnswerService
	limitStatus   int
}

func NewAnswerHandler(answerService *app.AnswerService, limitStatus int) *AnswerHandler {
	if limitStatus == 0 {
		limitStatus = http.StatusTooManyRequests
	}
	return &AnswerHandler{
		answerService: answerService,
		limitStatus:   limitStatus,
	}
}

func (h *AnswerHandler) Answer(c *gin.Context) {
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
	modelName := strings.TrimSpace(c.Query("model_name"))
	if modelName == "" {
		response.Fail(c, http.StatusBadRequest, "model_name is required")
		return
	}

	result, err := h.answerService.Answer(c.Request.Context(), app.AnswerInput{
		UserID:    user.ID,
		APIKey:    user.APIKey,
		ChatID:    chatID,
		ModelName: modelName,
		Question:  c.Query("question"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, gin.H{"answer": result.Answer})
}

func (h *AnswerHandler) fail(c *gin.Context, err error) {
	var backendErr *ai.BackendError
	switch {
	case errors.Is(err, app.ErrChatNotFound):
		response.Fail(c, http.StatusNotFound, "Chat not found")
	case errors.Is(err, app.ErrModelNotFound):
		response.Fail(c, http.StatusNotFound, "Model not found")
	case errors.Is(err, app.ErrLimitExceeded):
		response.Fail(c, h.limitStatus, "Chat history limit exceeded")
	case errors.Is(err, app.ErrQuestionEmpty), errors.Is(err, app.ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrInvalidModelType), errors.Is(err, ai.ErrMissingDocID):
		response.Fail(c, http.StatusInternalServerError, err.Error())
	case errors.Is(err, prompt.ErrMalformedHistory):
		response.Fail(c, http.StatusInternalServerError, err.Error())
	case errors.As(err, &backendErr):
		response.Fail(c, http.StatusBadGateway, backendErr.Message)
	case errors.Is(err, app.ErrAnswerIncomplete):
		response.Fail(c, http.StatusBadGateway, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, "answer failed")
	}
}
