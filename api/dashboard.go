package api

import (
	"budget/ledger"
	"budget/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	ledger *ledger.Service
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(svc *ledger.Service) *DashboardHandler {
	return &DashboardHandler{ledger: svc}
}

// DashboardResponse 仪表盘数据，附带图表序列
type DashboardResponse struct {
	ledger.DashboardView
	ChartLabels []string          `json:"chart_labels"`
	ChartData   []decimal.Decimal `json:"chart_data" swaggertype:"array,string"`
}

// Dashboard 仪表盘
// @Summary 仪表盘
// @Description 收支列表、总收入、总支出、结余与分类合计
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=DashboardResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	view, err := h.ledger.Dashboard(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "获取仪表盘失败")
		return
	}
	Success(c, DashboardResponse{
		DashboardView: view,
		ChartLabels:   view.TotalsByCategory.Labels(),
		ChartData:     view.TotalsByCategory.Values(),
	})
}

// Categories 类别列表
// @Summary 类别列表
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Router /api/v1/categories [get]
func (h *DashboardHandler) Categories(c *gin.Context) {
	Success(c, h.ledger.Categories())
}
