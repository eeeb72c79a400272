package api

import (
	"encoding/json"

	"budget/ledger"
	"budget/middleware"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	ledger *ledger.Service
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(svc *ledger.Service) *ExpenseHandler {
	return &ExpenseHandler{ledger: svc}
}

// ExpenseRequest 新增/编辑消费记录请求，金额可为数字或数字字符串
type ExpenseRequest struct {
	Category    string      `json:"category" binding:"required" example:"Groceries"`
	Amount      json.Number `json:"amount" binding:"required" swaggertype:"string" example:"45.20"`
	Description string      `json:"description" example:"weekly shopping"`
}

func (r ExpenseRequest) input() ledger.ExpenseInput {
	return ledger.ExpenseInput{
		Category:    r.Category,
		Amount:      r.Amount.String(),
		Description: r.Description,
	}
}

// Create 新增消费记录
// @Summary 新增消费记录
// @Description 金额四舍五入到两位小数且必须大于 0，日期取服务器当前时间
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "消费记录"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	expense, err := h.ledger.AddExpense(c.Request.Context(), middleware.GetCurrentUserID(c), req.input())
	if err != nil {
		respondError(c, err, "创建消费记录失败")
		return
	}
	SuccessWithMessage(c, "创建成功", expense)
}

// List 消费记录列表
// @Summary 消费记录列表
// @Description 当前用户全部消费记录，按新增顺序倒序
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	list, err := h.ledger.ListExpenses(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "获取消费记录失败")
		return
	}
	Success(c, list)
}

// Get 消费记录详情
// @Summary 消费记录详情
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 403 {object} Response "无权操作"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	expense, err := h.ledger.GetExpense(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		respondError(c, err, "获取消费记录失败")
		return
	}
	Success(c, expense)
}

// Update 编辑消费记录
// @Summary 编辑消费记录
// @Description 覆盖类别、金额、备注，日期更新为当前时间
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Param request body ExpenseRequest true "消费记录"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "无权操作"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	expense, err := h.ledger.EditExpense(c.Request.Context(), middleware.GetCurrentUserID(c), id, req.input())
	if err != nil {
		respondError(c, err, "更新消费记录失败")
		return
	}
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "无权操作"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteExpense(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err, "删除消费记录失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
