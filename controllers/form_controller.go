package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/services"
)

type FormController struct {
	forms *services.FormService
}

func NewFormController(forms *services.FormService) *FormController {
	return &FormController{forms: forms}
}

// GET /api/forms/?form_type=&is_active=&search=
func (fc *FormController) List(c *gin.Context) {
	filter := services.FormFilter{
		FormType: c.Query("form_type"),
		Search:   c.Query("search"),
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, &services.ValidationError{Fields: map[string]string{"is_active": "must be true or false"}})
			return
		}
		filter.IsActive = &active
	}

	forms, err := fc.forms.List(c.Request.Context(), middleware.CurrentCaller(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// POST /api/forms/
func (fc *FormController) Create(c *gin.Context) {
	var req services.FormInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	form, err := fc.forms.Create(c.Request.Context(), middleware.CurrentCaller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, form)
}

// GET /api/forms/:id/
func (fc *FormController) Get(c *gin.Context) {
	form, err := fc.forms.Get(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// PUT /api/forms/:id/
func (fc *FormController) Replace(c *gin.Context) {
	var req services.FormUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	form, err := fc.forms.Replace(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// PATCH /api/forms/:id/
func (fc *FormController) Update(c *gin.Context) {
	var req services.FormUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	form, err := fc.forms.Update(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// DELETE /api/forms/:id/
func (fc *FormController) Delete(c *gin.Context) {
	if err := fc.forms.Delete(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/forms/:id/analytics/
func (fc *FormController) Analytics(c *gin.Context) {
	report, err := fc.forms.Analytics(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/forms/:id/question_analytics/
func (fc *FormController) QuestionAnalytics(c *gin.Context) {
	stats, err := fc.forms.QuestionAnalytics(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/forms/:id/share_link/
func (fc *FormController) ShareLink(c *gin.Context) {
	link, err := fc.forms.GetShareLink(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// GET /api/form-types/
func (fc *FormController) FormTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form_types": models.FormTypes})
}
