package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/services"
	"github.com/vnkhanh/feedback-server/utils"
)

// CheckFormOwner stops requests on forms the caller does not own. Foreign
// forms answer 404 like missing ones.
func CheckFormOwner(forms *services.FormService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CurrentCaller(c)
		id := c.Param("id")

		owns, err := forms.Owns(c.Request.Context(), caller, id)
		if err != nil {
			utils.Log.WithError(err).WithField("form_id", id).Error("ownership check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if !owns {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Form not found"})
			return
		}
		c.Next()
	}
}
