package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"PairChat/tools/errs"
)

// CtxUserKey is where the middleware stores the verified user identity.
const CtxUserKey = "auth_user_id"

// Middleware verifies a Bearer token on REST routes (history load) and puts
// the bound user id into the gin context.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuth.WithDetail("missing bearer token"))
			return
		}
		userID, err := Verify(opts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuth.WithDetail(err.Error()))
			return
		}
		c.Set(CtxUserKey, userID)
		c.Next()
	}
}

// UserID reads the identity set by Middleware; empty if the route skipped it.
func UserID(c *gin.Context) string {
	v, _ := c.Get(CtxUserKey)
	s, _ := v.(string)
	return s
}

func bearerToken(c *gin.Context) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
