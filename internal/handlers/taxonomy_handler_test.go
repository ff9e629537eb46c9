package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func taxonomyTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTaxonomyHandler(nil, 20, 100)
	r := gin.New()
	r.GET("/categories/:id", h.GetCategory)
	r.GET("/groups/:id", h.GetGroup)
	return r
}

func TestGetCategoryRejectsInvalidID(t *testing.T) {
	r := taxonomyTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/categories/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
	assert.Contains(t, w.Body.String(), "Category ID must be a valid UUID")
}

func TestGetGroupRejectsInvalidID(t *testing.T) {
	r := taxonomyTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/groups/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
	assert.Contains(t, w.Body.String(), "Group ID must be a valid UUID")
}
