package controller

import (
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	ResultService *service.ResultService
	ReportService *service.ReportService
}

func NewResultController(resultService *service.ResultService, reportService *service.ReportService) *ResultController {
	return &ResultController{
		ResultService: resultService,
		ReportService: reportService,
	}
}

// Submit godoc
// @Summary 提交成绩
// @Description 兼容客户端评分的直接提交；仍会检查可用窗口与次数上限
// @Tags 成绩
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubmitResultInput true "成绩"
// @Success 201 {object} util.Response{data=model.Result} "已记录"
// @Failure 400 {object} util.Response "窗口外或次数用尽"
// @Router /api/results/submit [post]
func (c *ResultController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitResultInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ResultService.Submit(claims.UserID, &req, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	monitoring.SubmissionCounter.WithLabelValues(service.TriggerManual).Inc()
	util.Created(ctx, result)
}

// History godoc
// @Summary 我的成绩历史
// @Description 带 quizId 查询参数时只看该测验的本人成绩，每条附带通过标记与剩余次数
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param   quizId query int false "测验ID"
// @Success 200 {object} util.Response{data=[]model.Result} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/results/ [get]
func (c *ResultController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if raw := ctx.Query("quizId"); raw != "" {
		views, err := c.ResultService.GetUserAttempts(claims.UserID, util.MustParseUint(raw))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		util.Success(ctx, views)
		return
	}

	results, err := c.ResultService.GetHistory(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// Get godoc
// @Summary 单条成绩
// @Description 本人、测验创建者或管理员可见
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param   resultId path int true "成绩ID"
// @Success 200 {object} util.Response{data=model.Result} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "成绩不存在"
// @Router /api/results/{resultId} [get]
func (c *ResultController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	resultID := util.MustParseUint(ctx.Param("resultId"))

	result, err := c.ResultService.GetAttempt(resultID, claims.UserID, claims.Role == model.Admin)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// QuizReport godoc
// @Summary 测验成绩面板
// @Description 仅创建者或管理员；含平均分、通过率和最高分得主
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizReport} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/results/quiz/{quizId} [get]
func (c *ResultController) QuizReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	report, err := c.ReportService.QuizReport(quizID, claims.UserID, claims.Role == model.Admin)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
