package api

import (
	"errors"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 类别相关提示
const (
	MsgCategoryNameTaken = "Já existe uma categoria com esse nome."
	MsgCategoryNotFound  = "Categoria não encontrada."
	MsgCategorySystem    = "Categorias do sistema não podem ser alteradas."
	MsgCategoryArchived  = "Categoria já está arquivada."
)

// CategoryHandler 交易类别管理，用户只能维护自己的非系统类别
type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

type CategoryRequest struct {
	Name string `json:"name" example:"Mercado"`
}

// findOwnCategory 查询用户自己的可修改类别
func findOwnCategory(c *gin.Context, userID, id uint) (*models.Category, bool) {
	var cat models.Category
	err := database.DB.WithContext(c.Request.Context()).Where("id = ? AND user_id = ?", id, userID).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, MsgCategoryNotFound)
		return nil, false
	}
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao consultar categoria."))
		return nil, false
	}
	if cat.IsSystem {
		BadRequest(c, MsgCategorySystem)
		return nil, false
	}
	return &cat, true
}

// List 列出用户类别与全局类别
// @Summary 类别列表
// @Description 用户自有类别与全局类别，按名称排序
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param is_archived query string false "归档筛选"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.WithContext(c.Request.Context()).Where("(user_id = ? OR user_id IS NULL)", userID)
	if archived := archivedFilter(c.Query("is_archived")); archived != nil {
		query = query.Where("is_archived = ?", *archived)
	}

	list := []models.Category{}
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao listar categorias."))
		return
	}
	Success(c, list)
}

// Create 创建类别
// @Summary 创建类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "参数错误或名称重复"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}
	name, msg := cleanName(req.Name)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	// 唯一性
	taken, err := service.CategoryNameTaken(c.Request.Context(), database.DB, &userID, name, 0)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao criar categoria."))
		return
	}
	if taken {
		BadRequest(c, MsgCategoryNameTaken)
		return
	}

	cat := models.Category{UserID: &userID, Name: name}
	if err := database.DB.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao criar categoria."))
		return
	}
	SuccessWithMessage(c, "Categoria criada.", cat)
}

// Update 重命名类别
// @Summary 更新类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body CategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "参数错误、名称重复或系统类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}
	name, msg := cleanName(req.Name)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	cat, ok := findOwnCategory(c, userID, id)
	if !ok {
		return
	}

	if !cat.IsArchived {
		taken, err := service.CategoryNameTaken(c.Request.Context(), database.DB, &userID, name, cat.ID)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "Falha ao atualizar categoria."))
			return
		}
		if taken {
			BadRequest(c, MsgCategoryNameTaken)
			return
		}
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(cat).Update("name", name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao atualizar categoria."))
		return
	}
	cat.Name = name
	SuccessWithMessage(c, "Categoria atualizada.", cat)
}

// Delete 删除类别，关联交易的类别置空
// @Summary 删除类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "系统类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	cat, ok := findOwnCategory(c, userID, id)
	if !ok {
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Delete(cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao excluir categoria."))
		return
	}
	SuccessWithMessage(c, "Categoria excluída.", nil)
}

// Archive 归档类别
// @Summary 归档类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response{data=models.Category} "归档成功"
// @Failure 400 {object} Response "已归档或系统类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id}/archive [post]
func (h *CategoryHandler) Archive(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	cat, ok := findOwnCategory(c, userID, id)
	if !ok {
		return
	}
	if cat.IsArchived {
		BadRequest(c, MsgCategoryArchived)
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(cat).Update("is_archived", true).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao arquivar categoria."))
		return
	}
	cat.IsArchived = true
	SuccessWithMessage(c, "Categoria arquivada.", cat)
}
