package api

import (
	"errors"
	"strconv"

	"budget/apperr"
	"budget/config"

	"github.com/gin-gonic/gin"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// respondError 按错误分类写响应，fallback 用于未分类的内部错误
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequest(c, verr.Error())
	case errors.Is(err, apperr.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, "记录不存在")
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(c, "无权操作该记录")
	case errors.Is(err, apperr.ErrConflict):
		Conflict(c, "用户名已存在")
	case errors.Is(err, apperr.ErrAuth):
		Unauthorized(c, "用户名或密码错误")
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

// parseID 解析路径参数中的记录 ID
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
