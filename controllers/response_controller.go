package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

type ResponseController struct {
	responses *services.ResponseService
}

func NewResponseController(responses *services.ResponseService) *ResponseController {
	return &ResponseController{responses: responses}
}

// GET /api/responses/?form_type=&form_id=&date_from=&date_to=&page=&limit=
func (rc *ResponseController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := rc.responses.List(c.Request.Context(), middleware.CurrentCaller(c), services.ResponseFilter{
		FormType: c.Query("form_type"),
		FormID:   c.Query("form_id"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/responses/:id/
func (rc *ResponseController) Get(c *gin.Context) {
	r, err := rc.responses.Get(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
