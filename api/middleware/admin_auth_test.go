package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin", AdminAuth(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthAcceptsValidToken(t *testing.T) {
	r := newTestRouter("secret-token")
	w := doRequest(r, "Bearer secret-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthRejectsWrongToken(t *testing.T) {
	r := newTestRouter("secret-token")
	w := doRequest(r, "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthRejectsMissingHeader(t *testing.T) {
	r := newTestRouter("secret-token")
	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthDisabledWithoutConfiguredToken(t *testing.T) {
	r := newTestRouter("")
	w := doRequest(r, "Bearer anything")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
