package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reelkit/reelkit/internal/auth"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/types"
)

// AuthMiddleware validates the bearer token and puts the account id on the
// request context. Routes behind it can rely on types.GetUserID being set.
func AuthMiddleware(validator auth.Validator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(types.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			abortUnauthorized(c, ierr.NewError("missing bearer token").
				WithHint("Send an Authorization: Bearer header").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			log.Debugw("token validation failed", "error", err)
			abortUnauthorized(c, err)
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.AccountID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
