package controller

import (
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService        *service.QuizService
	EligibilityService *service.EligibilityService
	MediaService       *service.MediaService
}

func NewQuizController(quizService *service.QuizService, eligibilityService *service.EligibilityService, mediaService *service.MediaService) *QuizController {
	return &QuizController{
		QuizService:        quizService,
		EligibilityService: eligibilityService,
		MediaService:       mediaService,
	}
}

// QuizListItem 列表项，附带窗口可用标记
type QuizListItem struct {
	model.Quiz
	IsAvailable bool `json:"isAvailable"`
}

func annotate(quizzes []model.Quiz, now time.Time) []QuizListItem {
	items := make([]QuizListItem, 0, len(quizzes))
	for i := range quizzes {
		items = append(items, QuizListItem{
			Quiz:        quizzes[i],
			IsAvailable: service.QuizAvailable(&quizzes[i], now),
		})
	}
	return items
}

// List godoc
// @Summary 测验列表
// @Description 普通用户看到自己创建或参加过的测验，管理员看到全部
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]QuizListItem} "成功"
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListVisible(claims.UserID, claims.Role == model.Admin)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, annotate(quizzes, time.Now()))
}

// ListMine godoc
// @Summary 我创建的测验
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Quiz} "成功"
// @Router /api/quizzes/user [get]
func (c *QuizController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListByCreator(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// ListPopular godoc
// @Summary 热门测验
// @Description 按尝试次数排序的前 10 个测验
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]QuizListItem} "成功"
// @Router /api/quizzes/popular [get]
func (c *QuizController) ListPopular(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListPopular(10)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, annotate(quizzes, time.Now()))
}

// Get godoc
// @Summary 测验详情
// @Description 返回剥离正确答案的题目和当前用户的参加资格
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{quizId} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	quiz, questions, err := c.QuizService.GetForTaking(quizID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	eligibility, _, err := c.EligibilityService.Check(quizID, claims.UserID, time.Now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"quiz":        quiz,
		"questions":   questions,
		"eligibility": eligibility,
	})
}

// Create godoc
// @Summary 创建测验
// @Description 题目与测验在同一事务内写入，首个未通过的校验规则会出现在 400 消息里
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuizInput true "测验定义"
// @Success 201 {object} util.Response{data=model.Quiz} "创建成功"
// @Failure 400 {object} util.Response "校验失败"
// @Router /api/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Create(claims.UserID, &req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// Update godoc
// @Summary 更新测验
// @Description 整体替换测验定义；仅创建者或管理员可改
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Param   body body service.QuizInput true "测验定义"
// @Success 200 {object} util.Response{data=model.Quiz} "更新成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/quizzes/{quizId} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Update(quizID, claims.UserID, claims.Role == model.Admin, &req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Delete godoc
// @Summary 删除测验
// @Description 软删除测验及其题目，历史成绩保留
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/quizzes/{quizId} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	quizID := util.MustParseUint(ctx.Param("quizId"))

	if err := c.QuizService.Delete(quizID, claims.UserID, claims.Role == model.Admin); err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": quizID})
}

// UploadMedia godoc
// @Summary 上传题目附件
// @Description 图片/音频/视频，保存后返回可写入题目的 URL
// @Tags 测验
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   quizId path int true "测验ID"
// @Param   file formData file true "附件"
// @Success 200 {object} util.Response{data=object} "上传成功"
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/quizzes/{quizId}/media [post]
func (c *QuizController) UploadMedia(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.MediaService.SaveQuestionMedia(ctx.Request.Context(), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
