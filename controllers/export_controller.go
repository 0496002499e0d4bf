package controllers

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/services"
)

type ExportController struct {
	exports *services.ExportService
}

func NewExportController(exports *services.ExportService) *ExportController {
	return &ExportController{exports: exports}
}

// POST /api/forms/:id/export/
func (ec *ExportController) Create(c *gin.Context) {
	var req services.ExportInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badPayload(c, err)
			return
		}
	}
	job, err := ec.exports.Create(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

// GET /api/exports/:job_id/
func (ec *ExportController) Get(c *gin.Context) {
	job, err := ec.exports.Get(c.Request.Context(), middleware.CurrentCaller(c), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if job.Status == models.ExportDone && job.FilePath != nil && c.Query("download") != "" {
		c.FileAttachment(*job.FilePath, path.Base(*job.FilePath))
		return
	}
	c.JSON(http.StatusOK, job)
}
