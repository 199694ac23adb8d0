package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/internal/middleware"
)

// fallbackRevocation is used when the token carries no expiry.
const fallbackRevocation = 24 * time.Hour

// TokenRevoker blacklists a token until it would have expired anyway.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, token string, expiry time.Duration) error
}

type SessionController struct {
	sessions *service.SessionRegistry
	revoker  TokenRevoker
}

// NewSessionController creates the controller. revoker may be nil.
func NewSessionController(sessions *service.SessionRegistry, revoker TokenRevoker) *SessionController {
	return &SessionController{
		sessions: sessions,
		revoker:  revoker,
	}
}

// Logout ends the session: the cart store is emptied and the token revoked.
// POST /api/v1/session/logout
func (ctrl *SessionController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, token, ok := requireUser(c)
	if !ok {
		return
	}

	ended := ctrl.sessions.Logout(userID)

	if ctrl.revoker != nil && token != "" {
		ttl := fallbackRevocation
		if exp, ok := middleware.GetTokenExpiry(c); ok {
			ttl = time.Until(exp)
		}
		if ttl > 0 {
			if err := ctrl.revoker.BlacklistToken(c.Request.Context(), token, ttl); err != nil {
				// the session is gone either way; the token lapses on its own
				log.Warn("Failed to revoke token", map[string]interface{}{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
		}
	}

	log.Info("User logged out", map[string]interface{}{
		"user_id":       userID,
		"session_ended": ended,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
