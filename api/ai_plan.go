package api

import (
	"strings"

	"fintrack/database"
	"fintrack/llm"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/prompt"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// AIPlanHandler AI 理财计划处理器
type AIPlanHandler struct {
	planner   *service.Planner
	validator *prompt.Validator
	email     *service.EmailService
}

// NewAIPlanHandler 创建 AI 计划处理器
func NewAIPlanHandler(planner *service.Planner, email *service.EmailService) *AIPlanHandler {
	validator := planner.Validator
	if validator == nil {
		validator = prompt.NewValidator(0, 0)
	}
	return &AIPlanHandler{planner: planner, validator: validator, email: email}
}

// ClassifyRequest 提示词分类请求
type ClassifyRequest struct {
	Text string `json:"text" example:"Quero juntar R$ 20 mil para a entrada de um apartamento"`
}

// ClassifyResponse 分类结果
type ClassifyResponse struct {
	Validation prompt.Result      `json:"validation"`
	Semantic   prompt.IntentScore `json:"semantic"`
}

// SavePlanRequest 手动保存已生成的计划
type SavePlanRequest struct {
	Template    string         `json:"template" example:"savings"`
	Objective   string         `json:"objective" example:"Reserva de emergência"`
	Model       string         `json:"model" example:"llama-3.1-70b-versatile"`
	Temperature *float64       `json:"temperature" example:"0.4"`
	Tokens      int            `json:"tokens" example:"1200"`
	Data        map[string]any `json:"data" swaggertype:"object"`
}

// UpdatePlanRequest 修改计划标题
type UpdatePlanRequest struct {
	Title string `json:"title" example:"Reserva de 6 meses"`
}

// Generate 生成理财计划
// @Summary 生成 AI 理财计划
// @Description 每用户每小时限 5 次；with_context 缺省为 true，会附带钱包余额、本月收支与主要支出类别
// @Tags AI 计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PlanRequest true "生成参数"
// @Success 200 {object} Response{data=service.PlanResult} "生成成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 422 {object} Response "模型返回内容无法解析"
// @Failure 429 {object} Response "超过次数限制"
// @Failure 502 {object} Response "模型调用失败"
// @Failure 504 {object} Response "模型调用超时"
// @Router /api/v1/ai/plan [post]
func (h *AIPlanHandler) Generate(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}

	result, err := h.planner.Generate(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err, "Falha ao gerar plano.")
		return
	}
	Success(c, result)
}

// Classify 校验并识别提示词意图
// @Summary 提示词分类
// @Tags AI 计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClassifyRequest true "文本"
// @Success 200 {object} Response{data=ClassifyResponse} "分类结果"
// @Router /api/v1/ai/classify [post]
func (h *AIPlanHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}

	Success(c, ClassifyResponse{
		Validation: h.validator.Validate(req.Text),
		Semantic:   prompt.ScoreIntent(req.Text),
	})
}

// List 计划列表
// @Summary 计划列表
// @Tags AI 计划
// @Produce json
// @Security BearerAuth
// @Param q query string false "标题/目标/模板关键字"
// @Param ordering query string false "created_at | -created_at | updated_at | -updated_at"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]models.AIPlan}} "获取成功"
// @Router /api/v1/ai-plans [get]
func (h *AIPlanHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := pagination(c)

	list, total, err := service.NewPlanStore(database.DB).List(c.Request.Context(), userID, service.PlanQuery{
		Search:   c.Query("q"),
		Ordering: c.Query("ordering"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		handleServiceError(c, err, "Falha ao listar planos.")
		return
	}
	if list == nil {
		list = []models.AIPlan{}
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     list,
	})
}

// Get 计划详情
// @Summary 计划详情
// @Tags AI 计划
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Success 200 {object} Response{data=models.AIPlan} "获取成功"
// @Failure 404 {object} Response "计划不存在"
// @Router /api/v1/ai-plans/{id} [get]
func (h *AIPlanHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	plan, err := service.NewPlanStore(database.DB).Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, "Falha ao consultar plano.")
		return
	}
	Success(c, plan)
}

// Create 手动保存计划
// @Summary 保存计划
// @Tags AI 计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SavePlanRequest true "计划内容"
// @Success 200 {object} Response{data=models.AIPlan} "保存成功"
// @Failure 400 {object} Response "计划内容不完整"
// @Router /api/v1/ai-plans [post]
func (h *AIPlanHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados inválidos."))
		return
	}
	if err := llm.ValidatePlan(req.Data); err != nil {
		BadRequest(c, err.Error())
		return
	}

	temperature := service.ClampTemperature(req.Temperature, models.DefaultPlanTemperature)
	plan, err := service.NewPlan(userID, strings.TrimSpace(req.Template), strings.TrimSpace(req.Objective), strings.TrimSpace(req.Model), temperature, req.Tokens, req.Data)
	if err != nil {
		handleServiceError(c, err, "Falha ao salvar plano.")
		return
	}
	if err := service.NewPlanStore(database.DB).SavePlan(c.Request.Context(), plan); err != nil {
		handleServiceError(c, err, "Falha ao salvar plano.")
		return
	}
	SuccessWithMessage(c, "Plano salvo.", plan)
}

// Update 修改计划标题
// @Summary 修改计划标题
// @Tags AI 计划
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Param request body UpdatePlanRequest true "标题"
// @Success 200 {object} Response{data=models.AIPlan} "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "计划不存在"
// @Router /api/v1/ai-plans/{id} [patch]
func (h *AIPlanHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, service.MsgTitleRequired)
		return
	}

	plan, err := service.NewPlanStore(database.DB).UpdateTitle(c.Request.Context(), userID, id, req.Title)
	if err != nil {
		handleServiceError(c, err, "Falha ao atualizar plano.")
		return
	}
	SuccessWithMessage(c, "Plano atualizado.", plan)
}

// Delete 删除计划
// @Summary 删除计划
// @Tags AI 计划
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "计划不存在"
// @Router /api/v1/ai-plans/{id} [delete]
func (h *AIPlanHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := service.NewPlanStore(database.DB).Delete(c.Request.Context(), userID, id); err != nil {
		handleServiceError(c, err, "Falha ao excluir plano.")
		return
	}
	SuccessWithMessage(c, "Plano excluído.", nil)
}

// Email 将计划摘要发送到用户邮箱
// @Summary 邮件发送计划
// @Tags AI 计划
// @Produce json
// @Security BearerAuth
// @Param id path int true "计划ID"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "用户未设置邮箱"
// @Failure 404 {object} Response "计划不存在"
// @Failure 503 {object} Response "邮件服务未启用"
// @Router /api/v1/ai-plans/{id}/email [post]
func (h *AIPlanHandler) Email(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	if h.email == nil || !h.email.Enabled() {
		handleServiceError(c, service.ErrEmailDisabled, "")
		return
	}

	plan, err := service.NewPlanStore(database.DB).Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, "Falha ao consultar plano.")
		return
	}

	var user models.User
	if err := database.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		NotFound(c, "Usuário não encontrado.")
		return
	}
	if strings.TrimSpace(user.Email) == "" {
		BadRequest(c, "Cadastre um e-mail no seu perfil.")
		return
	}

	if err := h.email.SendPlanEmail(user.Email, user.Username, plan); err != nil {
		handleServiceError(c, err, "Falha ao enviar e-mail.")
		return
	}
	SuccessWithMessage(c, "Plano enviado para "+user.Email+".", nil)
}
