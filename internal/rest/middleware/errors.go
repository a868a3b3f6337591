package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/reelkit/reelkit/internal/errors"
)

// ErrorHandler renders errors attached via c.Error as the standard error
// envelope. Handlers report failures with c.Error and return; this middleware
// owns the response shape.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
