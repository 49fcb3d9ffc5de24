package api

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"fintrack/database"
	"fintrack/ledger"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 名称长度上限
const MaxNameLength = 60

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// 钱包相关提示
const (
	MsgNameRequired     = "Informe um nome."
	MsgNameTooLong      = "Nome muito longo (máximo 60 caracteres)."
	MsgWalletNameTaken  = "Já existe uma carteira com esse nome."
	MsgWalletNotFound   = "Carteira não encontrada."
	MsgWalletArchived   = "Carteira já está arquivada."
	MsgInvalidKind      = "Tipo de carteira inválido."
	MsgInvalidColor     = "Cor inválida, use o formato #RRGGBB."
	MsgInvalidBalance   = "Saldo inicial inválido."
	MsgInvalidWalletArg = "wallet_id inválido."
)

// WalletHandler 钱包处理器
type WalletHandler struct {
	loc *time.Location
}

// NewWalletHandler 创建钱包处理器
func NewWalletHandler(loc *time.Location) *WalletHandler {
	return &WalletHandler{loc: loc}
}

// WalletRequest 创建/更新钱包请求，更新时字段可选
type WalletRequest struct {
	Name           *string `json:"name" example:"Conta corrente"`
	Kind           *string `json:"kind" example:"checking"`
	InitialBalance *Amount `json:"initial_balance" swaggertype:"string" example:"1500.00"`
	Color          *string `json:"color" example:"#3B82F6"`
}

// TotalBalanceResponse 总余额
type TotalBalanceResponse struct {
	TotalBalance string                  `json:"total_balance"`
	Wallets      []service.WalletBalance `json:"wallets"`
}

// cleanName 去除首尾空白并校验长度
func cleanName(raw string) (string, string) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", MsgNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", MsgNameTooLong
	}
	return name, ""
}

// apply 将请求写入钱包，返回校验失败信息
func (r *WalletRequest) apply(w *models.Wallet) string {
	if r.Name != nil {
		name, msg := cleanName(*r.Name)
		if msg != "" {
			return msg
		}
		w.Name = name
	}
	if r.Kind != nil {
		kind := strings.TrimSpace(*r.Kind)
		if !models.IsValidWalletKind(kind) {
			return MsgInvalidKind
		}
		w.Kind = kind
	}
	if r.InitialBalance != nil {
		raw := strings.TrimSpace(string(*r.InitialBalance))
		if raw == "" {
			raw = "0"
		}
		d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
		if err != nil {
			return MsgInvalidBalance
		}
		w.InitialBalance = d.Round(2)
	}
	if r.Color != nil {
		color := strings.TrimSpace(*r.Color)
		if !colorPattern.MatchString(color) {
			return MsgInvalidColor
		}
		w.Color = color
	}
	return ""
}

// findWallet 查询当前用户的钱包
func findWallet(c *gin.Context, userID, id uint) (*models.Wallet, bool) {
	var wallet models.Wallet
	err := database.DB.WithContext(c.Request.Context()).Where("id = ? AND user_id = ?", id, userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, MsgWalletNotFound)
		return nil, false
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao consultar carteira."))
		return nil, false
	}
	return &wallet, true
}

// List 钱包列表
// @Summary 钱包列表
// @Description 按名称排序，is_archived: true/1 仅归档, false/0/缺省 仅未归档, 其他值返回全部
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param is_archived query string false "归档筛选"
// @Success 200 {object} Response{data=[]models.Wallet} "获取成功"
// @Router /api/v1/wallets [get]
func (h *WalletHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.WithContext(c.Request.Context()).Where("user_id = ?", userID)
	if archived := archivedFilter(c.Query("is_archived")); archived != nil {
		query = query.Where("is_archived = ?", *archived)
	}

	wallets := []models.Wallet{}
	if err := query.Order("name ASC").Find(&wallets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao listar carteiras."))
		return
	}
	Success(c, wallets)
}

// Create 创建钱包
// @Summary 创建钱包
// @Tags 钱包
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WalletRequest true "钱包信息"
// @Success 200 {object} Response{data=models.Wallet} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/wallets [post]
func (h *WalletHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}
	if req.Name == nil {
		BadRequest(c, MsgNameRequired)
		return
	}

	wallet := models.Wallet{
		UserID: userID,
		Kind:   models.WalletKindChecking,
		Color:  models.DefaultWalletColor,
	}
	if msg := req.apply(&wallet); msg != "" {
		BadRequest(c, msg)
		return
	}

	taken, err := service.WalletNameTaken(c.Request.Context(), database.DB, userID, wallet.Name, 0)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao criar carteira."))
		return
	}
	if taken {
		BadRequest(c, MsgWalletNameTaken)
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&wallet).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao criar carteira."))
		return
	}
	SuccessWithMessage(c, "Carteira criada.", wallet)
}

// Get 钱包详情
// @Summary 钱包详情
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response{data=models.Wallet} "获取成功"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [get]
func (h *WalletHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	wallet, ok := findWallet(c, userID, id)
	if !ok {
		return
	}
	Success(c, wallet)
}

// Update 更新钱包
// @Summary 更新钱包
// @Tags 钱包
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Param request body WalletRequest true "钱包信息"
// @Success 200 {object} Response{data=models.Wallet} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [put]
func (h *WalletHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}

	wallet, ok := findWallet(c, userID, id)
	if !ok {
		return
	}
	if msg := req.apply(wallet); msg != "" {
		BadRequest(c, msg)
		return
	}

	if req.Name != nil && !wallet.IsArchived {
		taken, err := service.WalletNameTaken(c.Request.Context(), database.DB, userID, wallet.Name, wallet.ID)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "Falha ao atualizar carteira."))
			return
		}
		if taken {
			BadRequest(c, MsgWalletNameTaken)
			return
		}
	}

	if err := database.DB.WithContext(c.Request.Context()).Save(wallet).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao atualizar carteira."))
		return
	}
	SuccessWithMessage(c, "Carteira atualizada.", wallet)
}

// Delete 删除钱包，交易随之级联删除
// @Summary 删除钱包
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [delete]
func (h *WalletHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	res := database.DB.WithContext(c.Request.Context()).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Wallet{})
	if res.Error != nil {
		InternalError(c, SafeErrorMessage(res.Error, "Falha ao excluir carteira."))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, MsgWalletNotFound)
		return
	}
	SuccessWithMessage(c, "Carteira excluída.", nil)
}

// Archive 归档钱包
// @Summary 归档钱包
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param id path int true "钱包ID"
// @Success 200 {object} Response{data=models.Wallet} "归档成功"
// @Failure 400 {object} Response "已归档"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id}/archive [post]
func (h *WalletHandler) Archive(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	wallet, ok := findWallet(c, userID, id)
	if !ok {
		return
	}
	if wallet.IsArchived {
		BadRequest(c, MsgWalletArchived)
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(wallet).Update("is_archived", true).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao arquivar carteira."))
		return
	}
	wallet.IsArchived = true
	SuccessWithMessage(c, "Carteira arquivada.", wallet)
}

// TotalBalance 未归档钱包的余额合计
// @Summary 总余额
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TotalBalanceResponse} "获取成功"
// @Router /api/v1/wallets/total-balance [get]
func (h *WalletHandler) TotalBalance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	balances, err := service.NewAnalytics(database.DB, h.loc).WalletBalances(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Falha ao calcular saldo.")
		return
	}
	Success(c, TotalBalanceResponse{
		TotalBalance: ledger.Money(service.TotalBalance(balances)),
		Wallets:      balances,
	})
}
