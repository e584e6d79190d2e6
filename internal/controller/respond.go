package controller

import (
	"errors"
	"net/http"

	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// writeServiceError 把领域错误映射为 HTTP 响应；未识别的错误记日志并返回 500
func writeServiceError(ctx *gin.Context, err error) {
	switch {
	case util.IsValidation(err) || util.IsMaxAttempts(err):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrNotYetAvailable),
		errors.Is(err, util.ErrExpired),
		errors.Is(err, util.ErrAnswerRequired),
		errors.Is(err, util.ErrIndexOutOfRange):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrResultNotFound),
		errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrSessionTerminal):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, http.StatusConflict, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
