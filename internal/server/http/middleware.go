package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talkroom/talkroom/internal/common"
	"github.com/talkroom/talkroom/internal/server/auth"
)

const memberIDKey = "memberId"

// BearerAuth verifies the Authorization header and stores the token subject
// in the request context under memberIDKey.
func BearerAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			fail(c, common.ErrInvalidToken)
			c.Abort()
			return
		}

		memberID, err := issuer.Verify(token)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}

		c.Set(memberIDKey, memberID)
		c.Next()
	}
}
