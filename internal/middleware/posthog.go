package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/team_finance_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

var untrackedPrefixes = []string{"/health", "/swagger"}

// routeEventName turns a route template into an event name:
// "/api/v1/budgets/:budgetID/threshold" becomes "budgets_threshold".
func routeEventName(fullPath string) string {
	fullPath = strings.TrimPrefix(fullPath, "/api/v1")
	var parts []string
	for _, seg := range strings.Split(fullPath, "/") {
		if seg == "" || strings.HasPrefix(seg, ":") {
			continue
		}
		parts = append(parts, strings.ReplaceAll(seg, "-", "_"))
	}
	return strings.Join(parts, "_")
}

// PosthogMiddleware records one analytics event per successful API call.
// Feed calls carry no user, so they are attributed to the team's feed.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		event := routeEventName(c.FullPath())
		if event == "" {
			return
		}

		distinctID, ok := GetUserIDFromContext(c)
		if !ok {
			teamID := c.Param("teamID")
			if teamID == "" {
				return
			}
			distinctID = "feed:" + teamID
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		for _, p := range c.Params {
			props[p.Key] = p.Value
		}
		posthogClient.Enqueue(distinctID, event, props)
	}
}
