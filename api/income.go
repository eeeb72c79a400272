package api

import (
	"encoding/json"

	"budget/ledger"
	"budget/middleware"

	"github.com/gin-gonic/gin"
)

// IncomeHandler 收入处理器
type IncomeHandler struct {
	ledger *ledger.Service
}

// NewIncomeHandler 创建收入处理器
func NewIncomeHandler(svc *ledger.Service) *IncomeHandler {
	return &IncomeHandler{ledger: svc}
}

// IncomeRequest 新增收入请求
type IncomeRequest struct {
	Amount json.Number `json:"amount" binding:"required" swaggertype:"string" example:"2500.00"`
}

// Create 新增收入
// @Summary 新增收入
// @Tags 收入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IncomeRequest true "收入金额"
// @Success 200 {object} Response{data=models.Income} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/incomes [post]
func (h *IncomeHandler) Create(c *gin.Context) {
	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	in, err := h.ledger.AddIncome(c.Request.Context(), middleware.GetCurrentUserID(c), req.Amount.String())
	if err != nil {
		respondError(c, err, "创建收入失败")
		return
	}
	SuccessWithMessage(c, "创建成功", in)
}

// List 收入列表
// @Summary 收入列表
// @Tags 收入
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Income} "获取成功"
// @Router /api/v1/incomes [get]
func (h *IncomeHandler) List(c *gin.Context) {
	list, err := h.ledger.ListIncomes(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "获取收入失败")
		return
	}
	Success(c, list)
}

// Get 收入详情
// @Summary 收入详情
// @Tags 收入
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response{data=models.Income} "获取成功"
// @Failure 403 {object} Response "无权操作"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [get]
func (h *IncomeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, err := h.ledger.GetIncome(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err, "获取收入失败")
		return
	}
	Success(c, in)
}

// Delete 删除单条收入
// @Summary 删除收入
// @Tags 收入
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "无权操作"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [delete]
func (h *IncomeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteIncome(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err, "删除收入失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Reset 清空当前用户全部收入
// @Summary 重置收入
// @Description 删除当前用户的全部收入记录，消费记录不受影响
// @Tags 收入
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=map[string]int64} "已清空"
// @Router /api/v1/incomes [delete]
func (h *IncomeHandler) Reset(c *gin.Context) {
	n, err := h.ledger.ResetIncome(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "重置收入失败")
		return
	}
	SuccessWithMessage(c, "收入已清空", gin.H{"deleted": n})
}
