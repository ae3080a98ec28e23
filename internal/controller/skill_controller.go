package controller

import (
	"skill_matrix_backend/internal/service"
	"skill_matrix_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SkillController struct {
	Service *service.SkillService
}

func NewSkillController(svc *service.SkillService) *SkillController {
	return &SkillController{Service: svc}
}

// @Summary List the skill taxonomy
// @Tags skills
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/skills/domains [get]
func (c *SkillController) ListDomains(ctx *gin.Context) {
	domains, err := c.Service.ListDomains()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, domains)
}

// @Summary Create a skill domain
// @Tags skills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateDomainReq true "Domain"
// @Success 201 {object} util.Response
// @Router /api/admin/skills/domains [post]
func (c *SkillController) CreateDomain(ctx *gin.Context) {
	var req service.CreateDomainReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	d, err := c.Service.CreateDomain(&req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, d)
}

// @Summary Create a skill subcategory
// @Tags skills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateSubcategoryReq true "Subcategory"
// @Success 201 {object} util.Response
// @Router /api/admin/skills/subcategories [post]
func (c *SkillController) CreateSubcategory(ctx *gin.Context) {
	var req service.CreateSubcategoryReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Service.CreateSubcategory(&req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary List skills, optionally by subcategory
// @Tags skills
// @Produce json
// @Security BearerAuth
// @Param subcategoryId query string false "Subcategory ID"
// @Success 200 {object} util.Response
// @Router /api/skills [get]
func (c *SkillController) ListSkills(ctx *gin.Context) {
	skills, err := c.Service.ListSkills(ctx.Query("subcategoryId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, skills)
}

// @Summary Create a skill
// @Tags skills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateSkillReq true "Skill"
// @Success 201 {object} util.Response
// @Router /api/admin/skills [post]
func (c *SkillController) CreateSkill(ctx *gin.Context) {
	var req service.CreateSkillReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sk, err := c.Service.CreateSkill(&req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, sk)
}

// @Summary Delete a skill
// @Tags skills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Skill ID"
// @Success 200 {object} util.Response
// @Router /api/admin/skills/{id} [delete]
func (c *SkillController) DeleteSkill(ctx *gin.Context) {
	if err := c.Service.DeleteSkill(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List the caller's skill levels
// @Tags skills
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/my/skills [get]
func (c *SkillController) MySkills(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skills, err := c.Service.ListEmployeeSkills(user.EmployeeID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, skills)
}

// @Summary List the caller's skill gaps
// @Tags skills
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include resolved gaps"
// @Success 200 {object} util.Response
// @Router /api/my/gaps [get]
func (c *SkillController) MyGaps(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	gaps, err := c.Service.ListGaps(user.EmployeeID, ctx.Query("all") != "true")
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gaps)
}
