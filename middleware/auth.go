package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/services"
	"github.com/vnkhanh/feedback-server/utils"
)

const (
	CtxUser   = "user"
	CtxCaller = "caller"
	CtxClaims = "claims"
)

// AuthJWT checks Authorization: Bearer <token>, resolves the user and
// stores it in the context.
func AuthJWT(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, auth, bearerToken(c))
	}
}

// AuthJWTQuery also accepts the token as ?token=, for websocket clients
// that cannot set headers.
func AuthJWTQuery(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		authenticate(c, auth, token)
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func authenticate(c *gin.Context, auth *services.AuthService, token string) {
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication credentials were not provided"})
		return
	}
	user, claims, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		utils.Log.WithError(err).Debug("token rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	c.Set(CtxUser, user)
	c.Set(CtxCaller, services.CallerFromUser(user))
	c.Set(CtxClaims, claims)
	c.Next()
}

// RequireAdmin lets staff and superusers through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if !u.IsStaff && !u.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) models.User {
	return c.MustGet(CtxUser).(models.User)
}

func CurrentCaller(c *gin.Context) services.Caller {
	return c.MustGet(CtxCaller).(services.Caller)
}

func CurrentClaims(c *gin.Context) *utils.JWTClaims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.JWTClaims)
	return claims
}
