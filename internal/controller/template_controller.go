package controller

import (
	"errors"
	"strconv"

	"skill_matrix_backend/internal/service"
	"skill_matrix_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TemplateController struct {
	Service *service.TemplateService
	Storage *service.StorageService
}

func NewTemplateController(svc *service.TemplateService, storage *service.StorageService) *TemplateController {
	return &TemplateController{Service: svc, Storage: storage}
}

// @Summary Create a test template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateTemplateReq true "Template with sections, questions and options"
// @Success 201 {object} util.Response
// @Router /api/admin/templates [post]
func (c *TemplateController) Create(ctx *gin.Context) {
	var req service.CreateTemplateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t, err := c.Service.CreateTemplate(ctx.Request.Context(), &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, t)
}

// @Summary List templates
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/templates [get]
func (c *TemplateController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, total, err := c.Service.ListTemplates(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: rows, Total: total, Page: page, Limit: limit})
}

// @Summary Get a template with its full question tree
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} util.Response
// @Router /api/admin/templates/{id} [get]
func (c *TemplateController) Get(ctx *gin.Context) {
	t, err := c.Service.GetTemplate(ctx.Param("id"))
	if errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, t)
}

// @Summary Update a template's metadata
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param body body service.UpdateTemplateReq true "Fields to update"
// @Success 200 {object} util.Response
// @Router /api/admin/templates/{id} [put]
func (c *TemplateController) Update(ctx *gin.Context) {
	var req service.UpdateTemplateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t, err := c.Service.UpdateTemplate(ctx.Request.Context(), ctx.Param("id"), &req)
	if errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, t)
}

// @Summary Delete a template and its questions
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} util.Response
// @Router /api/admin/templates/{id} [delete]
func (c *TemplateController) Delete(ctx *gin.Context) {
	err := c.Service.DeleteTemplate(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

type setActiveReq struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// @Summary Activate or deactivate a template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param body body setActiveReq true "Active flag"
// @Success 200 {object} util.Response
// @Router /api/admin/templates/{id}/active [put]
func (c *TemplateController) SetActive(ctx *gin.Context) {
	var req setActiveReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.Service.SetTemplateActive(ctx.Request.Context(), ctx.Param("id"), *req.IsActive)
	if errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary Add a question to a template section
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param body body service.AddQuestionReq true "Question with options"
// @Success 201 {object} util.Response
// @Router /api/admin/templates/{id}/questions [post]
func (c *TemplateController) AddQuestion(ctx *gin.Context) {
	var req service.AddQuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(ctx.Request.Context(), ctx.Param("id"), &req)
	if errors.Is(err, util.ErrTemplateNotFound) || errors.Is(err, util.ErrSectionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// @Summary Retire a question
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param questionId path string true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/admin/templates/{id}/questions/{questionId} [delete]
func (c *TemplateController) RetireQuestion(ctx *gin.Context) {
	err := c.Service.RetireQuestion(ctx.Request.Context(), ctx.Param("id"), ctx.Param("questionId"))
	if errors.Is(err, util.ErrQuestionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary Upload media for a question
// @Tags templates
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Media file"
// @Success 201 {object} util.Response
// @Router /api/admin/templates/media [post]
func (c *TemplateController) UploadMedia(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.Storage.UploadQuestionMedia(ctx.Request.Context(), file.Filename, src,
		file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"url": url})
}

// @Summary List tests available to the caller
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/tests [get]
func (c *TemplateController) ListAvailable(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	tests, err := c.Service.ListAvailableTests(user.EmployeeID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, tests)
}

// @Summary Get the candidate view of an active test
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TemplateController) GetSnapshot(ctx *gin.Context) {
	snap, err := c.Service.BuildSnapshot(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, snap)
}
