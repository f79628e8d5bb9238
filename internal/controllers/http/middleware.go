package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order-timeline/internal/domain"
	"order-timeline/internal/infra"
)

const sessionKey = "admin_session"

// RequireSession resolves the embedded-app session token into an admin
// session. The token comes from the Authorization header, or from the
// id_token query parameter on the first document load.
func RequireSession(auth infra.AuthenticatorInterface, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("id_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if !errors.Is(err, infra.ErrInvalidSessionToken) && !errors.Is(err, infra.ErrNoShopSession) {
				status = http.StatusInternalServerError
			}
			log.Warn("session rejected", zap.Int("status", status), zap.Error(err))
			c.AbortWithStatusJSON(status, ErrorResponse{Error: http.StatusText(status)})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func sessionFrom(c *gin.Context) *domain.AdminSession {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*domain.AdminSession); ok {
			return s
		}
	}
	return nil
}
