package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/service"
)

// principalKey — ключ gin.Context, под которым AuthMiddleware сохраняет
// аутентифицированного пользователя.
const principalKey = "auth.principal"

// Principal описывает аутентифицированного пользователя запроса.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin сообщает, админская ли это учётка.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CurrentPrincipal достаёт пользователя, положенного AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	raw, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	principal, ok := raw.(Principal)
	return principal, ok
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware проверяет JWT access токен и кладёт Principal в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(principalKey, Principal{UserID: userID, Role: role})
		c.Next()
	}
}
