package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// GET /api/dashboard/
func (dc *DashboardController) Dashboard(c *gin.Context) {
	d, err := dc.dashboard.Dashboard(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/stats/?days=30
func (dc *DashboardController) Stats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		respondError(c, &services.ValidationError{Fields: map[string]string{"days": "must be a whole number"}})
		return
	}
	st, err := dc.dashboard.Stats(c.Request.Context(), middleware.CurrentCaller(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
