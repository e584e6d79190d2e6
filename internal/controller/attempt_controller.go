package controller

import (
	"time"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

func (c *AttemptController) writeUpdate(ctx *gin.Context, update *service.AttemptUpdate) {
	if update.Result != nil {
		monitoring.SubmissionCounter.WithLabelValues(update.Trigger).Inc()
	}
	util.Success(ctx, update)
}

// Start godoc
// @Summary 开始答题会话
// @Description 资格检查通过后建立会话；已有未结束会话则恢复它
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "会话"
// @Failure 400 {object} util.Response "不在可用窗口内或次数用尽"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{quizId}/attempt/start [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	update, err := c.AttemptService.Start(ctx.Request.Context(), claims.UserID, quizID, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}

// SelectAnswerRequest 记录某题的选择
type SelectAnswerRequest struct {
	QuestionID uint     `json:"questionId" binding:"required"`
	Answers    []string `json:"answers"`
}

// SelectAnswer godoc
// @Summary 记录答案
// @Description 覆盖写入某题的答案，不做对错判断
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Param   body body SelectAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "会话"
// @Router /api/quizzes/{quizId}/attempt/answer [put]
func (c *AttemptController) SelectAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	var req SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	update, err := c.AttemptService.SelectAnswer(ctx.Request.Context(), claims.UserID, quizID, req.QuestionID, req.Answers)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}

// NavigateRequest 跳转到指定题目
type NavigateRequest struct {
	Index *int `json:"index" binding:"required"`
}

// Navigate godoc
// @Summary 切换当前题目
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Param   body body NavigateRequest true "目标下标"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "会话"
// @Failure 400 {object} util.Response "下标越界或当前题未作答"
// @Router /api/quizzes/{quizId}/attempt/navigate [put]
func (c *AttemptController) Navigate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	var req NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	update, err := c.AttemptService.Navigate(ctx.Request.Context(), claims.UserID, quizID, *req.Index)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}

// SyncTimeRequest 客户端上报的剩余秒数
type SyncTimeRequest struct {
	TimeRemaining *int `json:"timeRemaining" binding:"required"`
}

// SyncTime godoc
// @Summary 同步倒计时
// @Description 服务端只往小收敛；归零即强制交卷
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Param   body body SyncTimeRequest true "剩余秒数"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "会话，归零时附带成绩"
// @Router /api/quizzes/{quizId}/attempt/time [put]
func (c *AttemptController) SyncTime(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	var req SyncTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	update, err := c.AttemptService.SyncTime(ctx.Request.Context(), claims.UserID, quizID, *req.TimeRemaining, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}

// ReportViolation godoc
// @Summary 上报违规
// @Description 第 3 次违规强制交卷
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "会话"
// @Router /api/quizzes/{quizId}/attempt/violation [post]
func (c *AttemptController) ReportViolation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	update, err := c.AttemptService.ReportViolation(ctx.Request.Context(), claims.UserID, quizID, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}

// ReportReload godoc
// @Summary 上报刷新
// @Description 第 5 次刷新/离开强制交卷
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "会话"
// @Router /api/quizzes/{quizId}/attempt/reload [post]
func (c *AttemptController) ReportReload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	update, err := c.AttemptService.ReportReload(ctx.Request.Context(), claims.UserID, quizID, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}

// Submit godoc
// @Summary 交卷
// @Description 服务端评分并落库一条成绩；超过次数上限返回 400
// @Tags 答题
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.AttemptUpdate} "成绩"
// @Failure 400 {object} util.Response "次数用尽"
// @Failure 409 {object} util.Response "会话已结束"
// @Router /api/quizzes/{quizId}/attempt/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	update, err := c.AttemptService.Submit(ctx.Request.Context(), claims.UserID, quizID, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	c.writeUpdate(ctx, update)
}
