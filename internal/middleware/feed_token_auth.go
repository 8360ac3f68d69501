package middleware

import (
	"net/http"

	"github.com/SscSPs/team_finance_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// FeedTokenHeader carries the shared secret of the bank feed.
const FeedTokenHeader = "x-feed-token"

// FeedTokenAuth authenticates bank feed pushes against a bcrypt hash of the
// shared feed token. An empty hash disables the feed entirely.
func FeedTokenAuth(tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if tokenHash == "" {
			logger.Warn("Feed request rejected, feed token is not configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Feed ingestion is not configured"})
			return
		}

		token := c.GetHeader(FeedTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Feed token required"})
			return
		}

		if !utils.CheckTokenHash(token, tokenHash) {
			logger.Warn("Invalid feed token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid feed token"})
			return
		}

		c.Set("authMethod", "feed_token")
		c.Next()
	}
}
