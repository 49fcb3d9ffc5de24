package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fintrack/database"
	"fintrack/events"
	"fintrack/ledger"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 交易相关提示
const (
	MsgWalletRequired      = "Carteira é obrigatória."
	MsgWalletNotOwned      = "Carteira não pertence ao usuário."
	MsgInvalidCategory     = "Categoria inválida."
	MsgInvalidType         = "Tipo deve ser 'expense' ou 'income'."
	MsgTransactionNotFound = "Transação não encontrada."
	MsgIDsRequired         = "Informe ao menos um ID."
)

// TransactionOrderings 列表允许的排序
var TransactionOrderings = map[string]string{
	"date":        "date ASC",
	"-date":       "date DESC",
	"amount":      "amount ASC",
	"-amount":     "amount DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

// TransactionHandler 交易记录处理器
type TransactionHandler struct {
	loc    *time.Location
	events events.Publisher
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(loc *time.Location, publisher events.Publisher) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &TransactionHandler{loc: loc, events: publisher}
}

// TransactionRequest 创建/更新交易请求，更新时字段可选
type TransactionRequest struct {
	WalletID    *uint   `json:"wallet_id" example:"1"`
	Type        *string `json:"type" example:"expense"`
	CategoryID  *uint   `json:"category_id" example:"3"`
	Amount      *Amount `json:"amount" swaggertype:"string" example:"42.90"`
	Date        *string `json:"date" example:"2024-04-15"`
	Description *string `json:"description" example:"Feira"`
	IsArchived  *bool   `json:"is_archived" example:"false"`
}

// TransferRequest 转账请求
type TransferRequest struct {
	FromWalletID uint   `json:"from_wallet_id" example:"1"`
	ToWalletID   uint   `json:"to_wallet_id" example:"2"`
	Amount       Amount `json:"amount" swaggertype:"string" example:"300.00"`
	Date         string `json:"date" example:"2024-04-15"`
	Description  string `json:"description" example:"Reserva"`
}

// BulkDeleteRequest 批量删除请求
type BulkDeleteRequest struct {
	IDs []uint `json:"ids"`
}

// apply 校验请求并写入交易；钱包与类别的归属在此检查
func (h *TransactionHandler) apply(c *gin.Context, userID uint, req *TransactionRequest, tx *models.Transaction) error {
	ctx := c.Request.Context()
	if req.WalletID != nil {
		var count int64
		err := database.DB.WithContext(ctx).Model(&models.Wallet{}).
			Where("id = ? AND user_id = ? AND is_archived = ?", *req.WalletID, userID, false).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return service.NewValidationError(MsgWalletNotOwned)
		}
		tx.WalletID = *req.WalletID
	}
	if req.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*req.Type))
		if !ledger.IsValidType(t) {
			return service.NewValidationError(MsgInvalidType)
		}
		tx.Type = t
	}
	if req.CategoryID != nil {
		var count int64
		err := database.DB.WithContext(ctx).Model(&models.Category{}).
			Where("id = ? AND (user_id = ? OR user_id IS NULL) AND is_archived = ?", *req.CategoryID, userID, false).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return service.NewValidationError(MsgInvalidCategory)
		}
		tx.CategoryID = req.CategoryID
	}
	if req.Amount != nil {
		amount, err := service.ParseAmount(string(*req.Amount))
		if err != nil {
			return err
		}
		tx.Amount = amount
	}
	if req.Date != nil {
		d, err := ledger.ParseDate(*req.Date, h.loc)
		if err != nil {
			return service.NewValidationError(service.MsgInvalidDate)
		}
		tx.Date = d
	}
	if req.Description != nil {
		tx.Description = service.TruncateDescription(*req.Description)
	}
	if req.IsArchived != nil {
		tx.IsArchived = *req.IsArchived
	}
	return nil
}

// findTransaction 查询当前用户的交易
func findTransaction(c *gin.Context, userID, id uint) (*models.Transaction, bool) {
	var tx models.Transaction
	err := database.DB.WithContext(c.Request.Context()).Where("id = ? AND user_id = ?", id, userID).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, MsgTransactionNotFound)
		return nil, false
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao consultar transação."))
		return nil, false
	}
	return &tx, true
}

// List 交易列表
// @Summary 交易列表
// @Description 支持日期、类型、类别、钱包、描述关键字与归档筛选，分页默认 20 条，最多 200 条
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param date_start query string false "开始日期 (2024-01-01)"
// @Param date_end query string false "结束日期 (2024-12-31)"
// @Param type query string false "expense | income"
// @Param category_id query int false "类别ID"
// @Param wallet_id query int false "钱包ID"
// @Param q query string false "描述关键字"
// @Param is_archived query string false "归档筛选"
// @Param ordering query string false "date | -date | amount | -amount | created_at | -created_at"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := pagination(c)

	query := database.DB.WithContext(c.Request.Context()).Model(&models.Transaction{}).Where("user_id = ?", userID)

	if raw := c.Query("date_start"); raw != "" {
		start, err := ledger.ParseDate(raw, h.loc)
		if err != nil {
			BadRequest(c, "date_start inválido.")
			return
		}
		query = query.Where("date >= ?", ledger.DayKey(start))
	}
	if raw := c.Query("date_end"); raw != "" {
		end, err := ledger.ParseDate(raw, h.loc)
		if err != nil {
			BadRequest(c, "date_end inválido.")
			return
		}
		query = query.Where("date <= ?", ledger.DayKey(end))
	}
	if t := strings.ToLower(strings.TrimSpace(c.Query("type"))); t != "" {
		if !ledger.IsValidType(t) {
			BadRequest(c, MsgInvalidType)
			return
		}
		query = query.Where("type = ?", t)
	}
	categoryID, err := optionalUint(c, "category_id")
	if err != nil {
		BadRequest(c, "category_id inválido.")
		return
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	walletID, err := optionalUint(c, "wallet_id")
	if err != nil {
		BadRequest(c, MsgInvalidWalletArg)
		return
	}
	if walletID != nil {
		query = query.Where("wallet_id = ?", *walletID)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("description LIKE ?", "%"+service.EscapeLike(q)+"%")
	}
	if archived := archivedFilter(c.Query("is_archived")); archived != nil {
		query = query.Where("is_archived = ?", *archived)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao listar transações."))
		return
	}

	order, ok := TransactionOrderings[c.Query("ordering")]
	if !ok {
		order = TransactionOrderings["-date"]
	}
	list := []models.Transaction{}
	err = query.Order(order).Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao listar transações."))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     list,
	})
}

// Create 创建交易
// @Summary 创建交易
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}
	if req.WalletID == nil || *req.WalletID == 0 {
		BadRequest(c, MsgWalletRequired)
		return
	}
	if req.Type == nil {
		BadRequest(c, MsgInvalidType)
		return
	}
	if req.Amount == nil {
		BadRequest(c, service.MsgInvalidAmount)
		return
	}

	tx := models.Transaction{UserID: userID}
	if err := h.apply(c, userID, &req, &tx); err != nil {
		handleServiceError(c, err, "Falha ao criar transação.")
		return
	}
	if tx.Date.IsZero() {
		now := time.Now().In(h.loc)
		tx.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao criar transação."))
		return
	}
	SuccessWithMessage(c, "Transação criada.", tx)
}

// Get 交易详情
// @Summary 交易详情
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	tx, ok := findTransaction(c, userID, id)
	if !ok {
		return
	}
	Success(c, tx)
}

// Update 更新交易
// @Summary 更新交易
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}

	tx, ok := findTransaction(c, userID, id)
	if !ok {
		return
	}
	if err := h.apply(c, userID, &req, tx); err != nil {
		handleServiceError(c, err, "Falha ao atualizar transação.")
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Save(tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao atualizar transação."))
		return
	}
	SuccessWithMessage(c, "Transação atualizada.", tx)
}

// Delete 删除交易
// @Summary 删除交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	res := database.DB.WithContext(c.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "Falha ao excluir transação."))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, MsgTransactionNotFound)
		return
	}
	SuccessWithMessage(c, "Transação excluída.", nil)
}

// BulkDelete 批量删除交易，仅删除属于当前用户的记录
// @Summary 批量删除交易
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "ID 列表"
// @Success 200 {object} Response{data=map[string]int64} "删除成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions/bulk [delete]
func (h *TransactionHandler) BulkDelete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		BadRequest(c, MsgIDsRequired)
		return
	}

	res := database.DB.WithContext(c.Request.Context()).Where("user_id = ? AND id IN ?", userID, req.IDs).Delete(&models.Transaction{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "Falha ao excluir transações."))
		return
	}
	SuccessWithMessage(c, "Transações excluídas.", gin.H{"deleted": res.RowsAffected})
}

// Recent 最近交易
// @Summary 最近交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量，默认 10，最多 50"
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=[]models.Transaction} "获取成功"
// @Router /api/v1/transactions/recent [get]
func (h *TransactionHandler) Recent(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	walletID, err := optionalUint(c, "wallet_id")
	if err != nil {
		BadRequest(c, MsgInvalidWalletArg)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := service.NewAnalytics(database.DB, h.loc).Recent(c.Request.Context(), userID, limit, walletID)
	if err != nil {
		handleServiceError(c, err, "Falha ao listar transações.")
		return
	}
	if list == nil {
		list = []models.Transaction{}
	}
	Success(c, list)
}

// Transfer 钱包间转账
// @Summary 钱包间转账
// @Description 在同一数据库事务中生成源钱包支出与目标钱包收入两条记录
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "转账信息"
// @Success 200 {object} Response{data=service.TransferResult} "转账成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions/transfer [post]
func (h *TransactionHandler) Transfer(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}

	result, err := service.NewTransfers(database.DB, h.loc, h.events).Execute(c.Request.Context(), userID, service.TransferInput{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       string(req.Amount),
		Date:         req.Date,
		Description:  req.Description,
	})
	if err != nil {
		handleServiceError(c, err, "Falha ao realizar transferência.")
		return
	}
	SuccessWithMessage(c, "Transferência realizada.", result)
}
