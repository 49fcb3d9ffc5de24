package api

import (
	"time"

	"fintrack/database"
	"fintrack/ledger"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 统计分析处理器
type AnalyticsHandler struct {
	loc *time.Location
}

// NewAnalyticsHandler 创建统计处理器
func NewAnalyticsHandler(loc *time.Location) *AnalyticsHandler {
	return &AnalyticsHandler{loc: loc}
}

// MonthlyResponse 月度收支
type MonthlyResponse struct {
	Months []ledger.MonthlyPoint `json:"months"`
}

func (h *AnalyticsHandler) analytics() *service.Analytics {
	return service.NewAnalytics(database.DB, h.loc)
}

// walletFilter 读取 wallet_id，非法时返回 400
func walletFilter(c *gin.Context) (*uint, bool) {
	walletID, err := optionalUint(c, "wallet_id")
	if err != nil {
		BadRequest(c, MsgInvalidWalletArg)
		return nil, false
	}
	return walletID, true
}

// Stats 汇总卡片
// @Summary 汇总统计
// @Description 本月收入/支出与上月对比、钱包余额与净资产
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=service.Stats} "获取成功"
// @Router /api/v1/transactions/stats [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	walletID, ok := walletFilter(c)
	if !ok {
		return
	}

	stats, err := h.analytics().Stats(c.Request.Context(), userID, walletID)
	if err != nil {
		handleServiceError(c, err, "Falha ao calcular estatísticas.")
		return
	}
	Success(c, stats)
}

// Monthly 月度收支（不含转账）
// @Summary 月度收支
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param months query int false "月数，默认 6，最多 24"
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=MonthlyResponse} "获取成功"
// @Router /api/v1/transactions/monthly [get]
func (h *AnalyticsHandler) Monthly(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	walletID, ok := walletFilter(c)
	if !ok {
		return
	}

	months, err := h.analytics().Monthly(c.Request.Context(), userID, ledger.ClampMonths(c.Query("months")), walletID)
	if err != nil {
		handleServiceError(c, err, "Falha ao calcular série mensal.")
		return
	}
	Success(c, MonthlyResponse{Months: months})
}

// BalanceSeries 月末余额序列
// @Summary 余额序列
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param months query int false "月数，默认 6，最多 24"
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=service.BalanceSeriesResult} "获取成功"
// @Router /api/v1/transactions/balance-series [get]
func (h *AnalyticsHandler) BalanceSeries(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	walletID, ok := walletFilter(c)
	if !ok {
		return
	}

	series, err := h.analytics().BalanceSeries(c.Request.Context(), userID, ledger.ClampMonths(c.Query("months")), walletID)
	if err != nil {
		handleServiceError(c, err, "Falha ao calcular série de saldo.")
		return
	}
	Success(c, series)
}

// ExpensesByCategory 按类别统计支出
// @Summary 支出类别分布
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份"
// @Param month query int false "月份"
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=service.Breakdown} "获取成功"
// @Router /api/v1/transactions/expenses-by-category [get]
func (h *AnalyticsHandler) ExpensesByCategory(c *gin.Context) {
	h.breakdown(c, ledger.TypeExpense)
}

// IncomeBySource 按来源统计收入
// @Summary 收入来源分布
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份"
// @Param month query int false "月份"
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=service.Breakdown} "获取成功"
// @Router /api/v1/transactions/income-by-source [get]
func (h *AnalyticsHandler) IncomeBySource(c *gin.Context) {
	h.breakdown(c, ledger.TypeIncome)
}

func (h *AnalyticsHandler) breakdown(c *gin.Context, txType string) {
	userID := middleware.GetCurrentUserID(c)
	walletID, ok := walletFilter(c)
	if !ok {
		return
	}

	a := h.analytics()
	year, month := ledger.ParseYearMonth(c.Query("year"), c.Query("month"), a.Today())
	result, err := a.ByCategory(c.Request.Context(), userID, txType, year, month, walletID)
	if err != nil {
		handleServiceError(c, err, "Falha ao calcular distribuição.")
		return
	}
	Success(c, result)
}
