package api

import (
	"context"

	"budget/service"

	"github.com/gin-gonic/gin"
)

// WidgetFetcher 小组件数据来源
type WidgetFetcher interface {
	Fetch(ctx context.Context) (service.Widgets, error)
}

// WidgetHandler 天气与价格小组件
type WidgetHandler struct {
	widgets WidgetFetcher
}

// NewWidgetHandler 创建小组件处理器
func NewWidgetHandler(w WidgetFetcher) *WidgetHandler {
	return &WidgetHandler{widgets: w}
}

// Get 获取小组件数据
// @Summary 天气与加密货币价格
// @Description 单项失败时在 errors 中说明，全部失败返回 502
// @Tags 小组件
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Widgets} "获取成功"
// @Failure 502 {object} Response "上游服务不可用"
// @Router /api/v1/widgets [get]
func (h *WidgetHandler) Get(c *gin.Context) {
	w, err := h.widgets.Fetch(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		Error(c, 502, SafeErrorMessage(err, "小组件数据获取失败"))
		return
	}
	Success(c, w)
}
