package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/fileflow/pkg/session"
)

const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// SessionAuth проверяет cookie сессии и кладет пользователя в контекст.
// Применяется ко всем REST и realtime точкам входа, кроме login/register.
func SessionAuth(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Set(UsernameKey, sess.Username)
		c.Next()
	}
}
