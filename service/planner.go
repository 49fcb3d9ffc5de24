package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fintrack/events"
	"fintrack/llm"
	"fintrack/logger"
	"fintrack/models"
	"fintrack/prompt"
)

// 计划生成相关常量
const (
	TemplateCustom         = "custom"
	CustomObjective        = "Plano Personalizado"
	MsgPromptRequired      = "Prompt obrigatório para template custom."
	MsgPromptInvalid       = "Prompt inválido"
	MsgObjectiveRequired   = "Campo 'objective' obrigatório."
	MsgObjectiveInvalid    = "Objetivo inválido"
	MsgEmptyModelResponse  = "Resposta vazia do modelo"
	MsgModelFailure        = "Falha ao consultar o modelo"
	MsgModelTimeout        = "Tempo esgotado ao consultar o modelo"
	MsgInvalidJSONResponse = "JSON inválido na resposta"

	DefaultTemperature = 0.5
	MaxTemperature     = 2.0
	DefaultMaxTokens   = 4096
	MinMaxTokens       = 256
	MaxMaxTokens       = 8192
	PreviewLength      = 200
)

// ContextProvider 构建财务上下文
type ContextProvider interface {
	Build(ctx context.Context, userID uint, topN int) (*FinanceContext, error)
}

// PlanSaver 保存计划
type PlanSaver interface {
	SavePlan(ctx context.Context, plan *models.AIPlan) error
}

// PlanRequest 生成请求
type PlanRequest struct {
	Template    string   `json:"template"`
	Objective   string   `json:"objective"`
	Prompt      string   `json:"prompt"`
	Persona     string   `json:"persona"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	Save        bool     `json:"save"`
	WithContext *bool    `json:"with_context"`
}

// PlanResult 生成结果
type PlanResult struct {
	Model       string          `json:"model"`
	Data        map[string]any  `json:"data"`
	TokensUsed  int             `json:"tokens_used"`
	Template    string          `json:"template"`
	Objective   string          `json:"objective"`
	WithContext bool            `json:"with_context"`
	Plan        *models.AIPlan  `json:"plan,omitempty"`
	Context     *FinanceContext `json:"-"`
}

// PlannerOptions 默认参数
type PlannerOptions struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	TopCategories int
}

// Planner 计划生成流程: 限流 → 校验 → 上下文 → 组装消息 → 调用模型 → 解析 → 保存
type Planner struct {
	Limiter   *PlanLimiter
	Contexts  ContextProvider
	Completer llm.Completer
	Plans     PlanSaver
	Events    events.Publisher
	Validator *prompt.Validator
	Options   PlannerOptions

	log *logger.Logger
}

// NewPlanner 创建计划生成器
func NewPlanner(limiter *PlanLimiter, contexts ContextProvider, completer llm.Completer, plans PlanSaver, publisher events.Publisher, validator *prompt.Validator, opts PlannerOptions) *Planner {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if validator == nil {
		validator = prompt.NewValidator(0, 0)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Planner{
		Limiter:   limiter,
		Contexts:  contexts,
		Completer: completer,
		Plans:     plans,
		Events:    publisher,
		Validator: validator,
		Options:   opts,
		log:       logger.Component("planner"),
	}
}

// ClampTemperature 限制在 [0, 2]，未提供时使用默认值
func ClampTemperature(t *float64, def float64) float64 {
	if t == nil {
		return def
	}
	switch {
	case *t < 0:
		return 0
	case *t > MaxTemperature:
		return MaxTemperature
	}
	return *t
}

// ClampMaxTokens 限制在 [256, 8192]，未提供时使用默认值
func ClampMaxTokens(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n <= 0 {
		n = DefaultMaxTokens
	}
	if n < MinMaxTokens {
		return MinMaxTokens
	}
	if n > MaxMaxTokens {
		return MaxMaxTokens
	}
	return n
}

// Generate 生成计划
func (p *Planner) Generate(ctx context.Context, userID uint, req PlanRequest) (*PlanResult, error) {
	if err := p.Limiter.Allow(userID); err != nil {
		return nil, err
	}

	template := strings.ToLower(strings.TrimSpace(req.Template))
	if template == "" {
		template = prompt.DefaultTemplate
	}
	objective := strings.TrimSpace(req.Objective)
	userPrompt := strings.TrimSpace(req.Prompt)

	var checked prompt.Result
	if template == TemplateCustom {
		if userPrompt == "" {
			return nil, NewValidationError(MsgPromptRequired)
		}
		checked = p.Validator.Validate(userPrompt)
		if !checked.Valid {
			return nil, NewValidationError(MsgPromptInvalid, checked.Errors...)
		}
		userPrompt = checked.Normalized
		if objective == "" {
			objective = CustomObjective
		}
	} else {
		if objective == "" {
			return nil, NewValidationError(MsgObjectiveRequired)
		}
		checked = p.Validator.Validate(objective)
		if !checked.Valid {
			return nil, NewValidationError(MsgObjectiveInvalid, checked.Errors...)
		}
		objective = checked.Normalized
	}

	withContext := req.WithContext == nil || *req.WithContext
	var finance *FinanceContext
	if withContext {
		var err error
		finance, err = p.Contexts.Build(ctx, userID, p.Options.TopCategories)
		if err != nil {
			return nil, err
		}
	}

	input := prompt.PlanInput{
		Objective: objective,
		Template:  template,
		Persona:   strings.TrimSpace(req.Persona),
		Prompt:    userPrompt,
		Intent:    checked.Intent,
		Lang:      checked.Lang,
		Warnings:  checked.Warnings,
	}
	if finance != nil {
		input.Context = finance
	}
	messages, err := prompt.BuildMessages(input)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.Options.Model
	}
	defTemp := p.Options.Temperature
	if defTemp == 0 {
		defTemp = DefaultTemperature
	}
	temperature := ClampTemperature(req.Temperature, defTemp)
	maxTokens := ClampMaxTokens(req.MaxTokens, p.Options.MaxTokens)

	p.Limiter.Hit(userID)

	callCtx, cancel := context.WithTimeout(ctx, p.Options.Timeout)
	defer cancel()
	started := time.Now()
	resp, err := p.Completer.Complete(callCtx, llm.Request{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, p.upstreamError(ctx, err, errors.Is(callCtx.Err(), context.DeadlineExceeded))
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, &UpstreamError{Message: MsgEmptyModelResponse, Err: llm.ErrEmptyResponse}
	}
	if resp.Model != "" {
		model = resp.Model
	}
	p.log.InfoContext(ctx, "模型调用完成",
		"user_id", userID,
		"model", model,
		"tokens", resp.TokensUsed,
		"duration", time.Since(started).String(),
	)

	data := llm.ExtractJSON(resp.Text)
	if data == nil {
		return nil, &ShapeError{Message: MsgInvalidJSONResponse, Preview: llm.Preview(resp.Text, PreviewLength)}
	}
	if err := llm.ValidatePlan(data); err != nil {
		return nil, &ShapeError{Message: err.Error(), Preview: llm.Preview(resp.Text, PreviewLength)}
	}
	if finance != nil {
		ReconcileGoalCategories(data, finance.CategoryNames())
	}

	out := &PlanResult{
		Model:       model,
		Data:        data,
		TokensUsed:  resp.TokensUsed,
		Template:    template,
		Objective:   objective,
		WithContext: withContext,
		Context:     finance,
	}

	if req.Save {
		plan, err := NewPlan(userID, template, objective, model, temperature, resp.TokensUsed, data)
		if err != nil {
			return nil, err
		}
		if err := p.Plans.SavePlan(ctx, plan); err != nil {
			return nil, err
		}
		out.Plan = plan
		p.publishSaved(ctx, plan)
	}
	return out, nil
}

func (p *Planner) upstreamError(ctx context.Context, err error, timedOut bool) error {
	if timedOut || errors.Is(err, context.DeadlineExceeded) {
		p.log.WarnContext(ctx, "模型调用超时", "error", err)
		return &UpstreamError{Message: MsgModelTimeout, Timeout: true, Err: err}
	}
	if errors.Is(err, llm.ErrEmptyResponse) {
		return &UpstreamError{Message: MsgEmptyModelResponse, Err: err}
	}
	p.log.ErrorContext(ctx, "模型调用失败", "error", err)
	return &UpstreamError{Message: MsgModelFailure, Err: err}
}

func (p *Planner) publishSaved(ctx context.Context, plan *models.AIPlan) {
	evt := events.PlanSaved{
		PlanID:   plan.ID,
		UserID:   plan.UserID,
		Title:    plan.Title,
		Template: plan.Template,
		Model:    plan.Model,
		Tokens:   plan.Tokens,
	}
	if err := p.Events.Publish(ctx, events.RoutingPlanSaved, evt); err != nil {
		p.log.WarnContext(ctx, "发布计划事件失败", "error", err, "plan_id", plan.ID)
	}
}
