package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/service"
)

func newTestTokens() *service.TokenManager {
	return service.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func issueAccessToken(t *testing.T, tokens *service.TokenManager, userID uuid.UUID, role string) string {
	t.Helper()
	pair, _, err := tokens.GeneratePair(&models.User{ID: userID, Role: role})
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}
	return pair.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTestTokens()
	userID := uuid.New()

	r := gin.New()
	r.GET("/secured", AuthMiddleware(tokens), func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID, "role": principal.Role})
	})

	req, _ := http.NewRequest("GET", "/secured", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, userID, models.RoleUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())

	// Без заголовка.
	req, _ = http.NewRequest("GET", "/secured", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Мусор вместо токена.
	req, _ = http.NewRequest("GET", "/secured", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Токен, подписанный другим секретом.
	foreign := service.NewTokenManager("other-secret", "other-refresh", time.Minute, time.Hour)
	req, _ = http.NewRequest("GET", "/secured", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, foreign, userID, models.RoleUser))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTestTokens()

	r := gin.New()
	r.GET("/admin", AuthMiddleware(tokens), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Роль user не проходит.
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, uuid.New(), models.RoleUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Роль из токена, а не из запроса: админ проходит.
	req, _ = http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, uuid.New(), models.RoleAdmin))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
