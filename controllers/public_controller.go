package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/services"
)

// PublicController serves the anonymous, unauthenticated endpoints.
type PublicController struct {
	public *services.PublicService
}

func NewPublicController(public *services.PublicService) *PublicController {
	return &PublicController{public: public}
}

// GET /api/public/forms/
func (pc *PublicController) ListForms(c *gin.Context) {
	forms, err := pc.public.ListForms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// GET /api/public/feedback/:id/
func (pc *PublicController) GetForm(c *gin.Context) {
	form, err := pc.public.GetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// POST /api/public/feedback/:id/
func (pc *PublicController) Submit(c *gin.Context) {
	var req services.SubmissionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := pc.public.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
