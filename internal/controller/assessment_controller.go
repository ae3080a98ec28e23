package controller

import (
	"errors"
	"strconv"

	"skill_matrix_backend/internal/service"
	"skill_matrix_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

type startAssessmentReq struct {
	TemplateID string `json:"templateId" binding:"required"`
}

// @Summary Start or resume a test session
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body startAssessmentReq true "Template to take"
// @Success 201 {object} util.Response
// @Router /api/assessments [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req startAssessmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Service.Start(ctx.Request.Context(), user.EmployeeID, req.TemplateID)
	if errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if session.Resumed {
		util.Success(ctx, session)
		return
	}
	util.Created(ctx, session)
}

// @Summary Get the caller's open session for a template
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/in-progress/{templateId} [get]
func (c *AssessmentController) GetInProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.Service.GetInProgress(ctx.Request.Context(), user.EmployeeID, ctx.Param("templateId"))
	if errors.Is(err, util.ErrAssessmentNotFound) || errors.Is(err, util.ErrTemplateNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary Save an answer
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param body body service.RecordAnswerReq true "Answer"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/answers [put]
func (c *AssessmentController) RecordAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RecordAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.Service.RecordAnswer(ctx.Request.Context(), user.EmployeeID, ctx.Param("id"), &req)
	switch {
	case errors.Is(err, util.ErrAssessmentNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAssessmentNotInProgress):
		util.Conflict(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, feedback)
	}
}

// @Summary Submit a session for scoring
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.Submit(ctx.Request.Context(), user.EmployeeID, ctx.Param("id"))
	switch {
	case errors.Is(err, util.ErrAssessmentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAssessmentNotInProgress):
		util.Conflict(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, result)
	}
}

// @Summary Get the result of a finished session
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/result [get]
func (c *AssessmentController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetResult(ctx.Request.Context(), user.EmployeeID, ctx.Param("id"))
	switch {
	case errors.Is(err, util.ErrAssessmentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAssessmentNotCompleted):
		util.Conflict(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, result)
	}
}

// @Summary Get any employee's session with its result
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response
// @Router /api/admin/assessments/{id} [get]
func (c *AssessmentController) AdminGet(ctx *gin.Context) {
	detail, err := c.Service.GetAssessmentDetail(ctx.Param("id"))
	if errors.Is(err, util.ErrAssessmentNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary List the caller's assessments
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	assessments, total, err := c.Service.ListAssessments(user.EmployeeID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  assessments,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
