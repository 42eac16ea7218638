package controller

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserController 管理端的用户管理接口
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// List godoc
// @Summary 用户列表
// @Description 分页返回用户，可按角色过滤
// @Tags 用户管理
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   role query string false "角色过滤"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
// @Security BearerAuth
func (c *UserController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	role := ctx.Query("role")

	users, total, err := c.UserService.List(page, limit, role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  users,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 用户详情
// @Tags 用户管理
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id} [get]
// @Security BearerAuth
func (c *UserController) Get(ctx *gin.Context) {
	user, err := c.UserService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, user)
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student instructor admin"`
}

// SetRole godoc
// @Summary 修改用户角色
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Param   id path int true "用户ID"
// @Param   body body SetRoleRequest true "目标角色"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id}/role [put]
// @Security BearerAuth
func (c *UserController) SetRole(ctx *gin.Context) {
	var req SetRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.UserService.SetRole(util.MustParseUint(ctx.Param("id")), model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// SetDisabled godoc
// @Summary 禁用或启用用户
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Param   id path int true "用户ID"
// @Param   body body SetDisabledRequest true "禁用标记"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
// @Security BearerAuth
func (c *UserController) SetDisabled(ctx *gin.Context) {
	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.UserService.SetDisabled(util.MustParseUint(ctx.Param("id")), *req.Disabled)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword godoc
// @Summary 重置用户密码
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Param   id path int true "用户ID"
// @Param   body body ResetPasswordRequest true "新密码"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/password [put]
// @Security BearerAuth
func (c *UserController) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.UserService.ResetPassword(util.MustParseUint(ctx.Param("id")), req.Password)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除用户
// @Tags 用户管理
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
// @Security BearerAuth
func (c *UserController) Delete(ctx *gin.Context) {
	if err := c.UserService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
