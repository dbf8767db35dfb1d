package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"promptgate/internal/app"
	"promptgate/internal/transport/http/middleware"
	"promptgate/internal/transport/http/response"
)

type ModelHandler struct {
	modelService  *app.ModelService
	ingestService *app.IngestService
}

func NewModelHandler(modelService *app.ModelService, ingestService *app.IngestService) *ModelHandler {
	return &ModelHandler{
		modelService:  modelService,
		ingestService: ingestService,
	}
}

func (h *ModelHandler) GetModels(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	models, err := h.modelService.ListModels(user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "list models failed")
		return
	}

	response.OK(c, gin.H{"models": models})
}

func (h *ModelHandler) GetModelInfo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	name := strings.TrimSpace(c.Query("model_name"))
	if name == "" {
		response.Fail(c, http.StatusBadRequest, "model_name is required")
		return
	}

	descriptor, err := h.modelService.GetModelInfo(user.ID, name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrModelNotFound):
			response.Fail(c, http.StatusNotFound, "Model not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, "load model info failed")
		}
		return
	}

	response.OK(c, gin.H{"model_data": descriptor})
}

// UploadModel registers a retrieval model from an uploaded PDF. The multipart
// form carries the descriptor fields alongside the file.
func (h *ModelHandler) UploadModel(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	maxTokens, _ := strconv.Atoi(c.PostForm("max_tokens"))
	visibility := c.PostForm("visibility") == "true" || c.PostForm("visibility") == "1"

	result, err := h.ingestService.UploadModel(c.Request.Context(), app.UploadModelInput{
		UserID:       user.ID,
		APIKey:       user.APIKey,
		ModelName:    c.PostForm("model_name"),
		Description:  c.PostForm("description"),
		SystemPrompt: c.PostForm("system"),
		Visibility:   visibility,
		MaxTokens:    maxTokens,
		FileName:     fileHeader.Filename,
		File:         file,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrModelNameTaken):
			response.Fail(c, http.StatusBadRequest, "Model name already exists")
		case errors.Is(err, app.ErrDocumentEmpty):
			response.Fail(c, http.StatusBadRequest, "Document has no extractable text")
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, "upload model failed")
		}
		return
	}

	response.OK(c, gin.H{"doc_id": result.DocID})
}

func (h *ModelHandler) DeleteModel(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	modelID := parseUintQuery(c, "model_id")
	if modelID == 0 {
		response.Fail(c, http.StatusBadRequest, "model_id is required")
		return
	}

	if err := h.modelService.DeleteModel(user.ID, modelID); err != nil {
		switch {
		case errors.Is(err, app.ErrModelNotFound):
			response.Fail(c, http.StatusNotFound, "Model not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, "delete model failed")
		}
		return
	}

	response.OK(c, gin.H{"message": "Model deleted"})
}
