package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, path string, route string, fn gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	engine := gin.New()
	engine.GET(route, func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "req-42")
		fn(c)
	})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleError(t *testing.T) {
	h := &BaseHandler{}
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", shared.NewValidationError("LAST_ITEM", "Cannot delete the last item"), http.StatusBadRequest, `"code":"LAST_ITEM"`},
		{"not found", shared.NewNotFoundError("Payment", "p1"), http.StatusNotFound, `"message":"Payment p1 not found"`},
		{"conflict", shared.NewConflictError("CASCADE_STEP_FAILED", "order_comments failed", nil), http.StatusConflict, `"code":"CASCADE_STEP_FAILED"`},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, `"code":"INTERNAL_ERROR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := run(t, "/", "/", func(c *gin.Context) { h.HandleError(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestParseID(t *testing.T) {
	h := &BaseHandler{}
	var got uuid.UUID
	fn := func(c *gin.Context) {
		id, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		got = id
		h.NoContent(c)
	}

	id := uuid.New()
	w := run(t, "/x/"+id.String(), "/x/:id", fn)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, id, got)

	w = run(t, "/x/123", "/x/:id", fn)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_ID"`)
}
