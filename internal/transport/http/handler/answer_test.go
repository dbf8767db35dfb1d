package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"promptgate/internal/ai"
	"promptgate/internal/app"
)

func TestAnswerErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAnswerHandler(nil, 429)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"chat not found", app.ErrChatNotFound, http.StatusNotFound, "Chat not found"},
		{"model not found", app.ErrModelNotFound, http.StatusNotFound, "Model not found"},
		{"limit exceeded", app.ErrLimitExceeded, 429, "Chat history limit exceeded"},
		{"empty question", app.ErrQuestionEmpty, http.StatusBadRequest, app.ErrQuestionEmpty.Error()},
		{"invalid model type", ai.ErrInvalidModelType, http.StatusInternalServerError, ai.ErrInvalidModelType.Error()},
		{"unhandled", errors.New("boom"), http.StatusInternalServerError, "answer failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			h.fail(c, tc.err)

			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d", w.Code, tc.wantStatus)
			}
			var body struct {
				StatusCode int    `json:"status_code"`
				Detail     string `json:"detail"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.StatusCode != tc.wantStatus {
				t.Fatalf("body status_code %d must match HTTP status %d", body.StatusCode, tc.wantStatus)
			}
			if body.Detail != tc.wantDetail {
				t.Fatalf("detail %q, want %q", body.Detail, tc.wantDetail)
			}
		})
	}
}

func TestAnswerBackendFaultMapsToBadGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAnswerHandler(nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.fail(c, &ai.BackendError{Backend: "chat", Message: "chat backend request failed"})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("backend fault must map to 502, got %d", w.Code)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Detail != "chat backend request failed" {
		t.Fatalf("unexpected detail: %q", body.Detail)
	}
}

func TestAnswerLimitStatusConfigurable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAnswerHandler(nil, http.StatusForbidden)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.fail(c, app.ErrLimitExceeded)

	if w.Code != http.StatusForbidden {
		t.Fatalf("limit status not honored: %d", w.Code)
	}
}
