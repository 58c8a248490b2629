package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware пропускает только пользователей с ролью admin.
// Должен стоять после AuthMiddleware, который кладёт Principal в контекст.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok || !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
			return
		}
		c.Next()
	}
}
