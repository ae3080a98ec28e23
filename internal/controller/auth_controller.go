package controller

import (
	"errors"
	"net/http"

	"skill_matrix_backend/internal/service"
	"skill_matrix_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Service *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc}
}

// @Summary Register a new employee account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterReq true "Registration details"
// @Success 201 {object} util.Response
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	emp, err := c.Service.Register(&req)
	if errors.Is(err, util.ErrEmailRegistered) {
		util.Conflict(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, emp)
}

// @Summary Log in and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginReq true "Credentials"
// @Success 200 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Login(&req)
	if errors.Is(err, util.ErrInvalidCredentials) {
		util.Error(ctx, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Get the caller's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	emp, err := c.Service.GetProfile(user.EmployeeID)
	if errors.Is(err, util.ErrEmployeeNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, emp)
}

// @Summary Update the caller's profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileReq true "Fields to update"
// @Success 200 {object} util.Response
// @Router /api/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	emp, err := c.Service.UpdateProfile(user.EmployeeID, &req)
	if errors.Is(err, util.ErrEmployeeNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, emp)
}
