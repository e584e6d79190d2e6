package controller

import (
	"strconv"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	ReportService *service.ReportService
	UserService   *service.UserService
}

func NewAdminController(reportService *service.ReportService, userService *service.UserService) *AdminController {
	return &AdminController{
		ReportService: reportService,
		UserService:   userService,
	}
}

// Dashboard godoc
// @Summary 平台总览
// @Description 用户/测验/题目/提交总数、平均分、按周活跃度、题型分布、最近提交
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.AdminReport} "成功"
// @Failure 403 {object} util.Response "非管理员"
// @Router /api/admin [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	report, err := c.ReportService.AdminReport()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// ListUsers godoc
// @Summary 用户列表
// @Description 按角色/关键字过滤并分页
// @Tags 管理
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Param   role query string false "角色过滤"
// @Param   search query string false "姓名/邮箱关键字"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	role := ctx.Query("role")
	search := ctx.Query("search")

	users, total, err := c.UserService.ListUsers(page, limit, role, search)
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

// UpdateRoleRequest 角色变更请求
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN QUIZ_MAKER QUIZ_TAKER"`
}

// UpdateUserRole godoc
// @Summary 修改用户角色
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "用户ID"
// @Param   body body UpdateRoleRequest true "目标角色"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/role [put]
func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("id"))

	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateRole(userID, model.UserRole(req.Role))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
