package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fintrack/llm"
)

// 默认值
const (
	DefaultObjective = "Criar um planejamento financeiro pessoal."
	DefaultPersona   = "Perfil moderado, respostas em pt-BR."
	DefaultTemplate  = "generico"
	OffTopicReply    = "Só posso ajudar com planejamento financeiro."
)

// SystemPrompt 固定的系统指令
const SystemPrompt = "Você é um planejador financeiro especializado em finanças pessoais brasileiras. " +
	"Responda sempre em português do Brasil. " +
	"Baseie o plano exclusivamente no ContextoFinanceiroJSON enviado pelo usuário, quando existir. " +
	"Detalhe objetivos, estratégias, riscos e recomendações, sugerindo metas realistas a partir do histórico. " +
	"Você APENAS responde sobre planejamento financeiro, orçamento, metas, dívidas e investimentos. " +
	"Se for solicitado algo fora desse escopo, responda: '" + OffTopicReply + "' " +
	"Retorne SOMENTE JSON conforme o schema indicado, sem comentários fora do JSON."

// PlanSchemaHint 期望的返回结构
const PlanSchemaHint = `Responda SOMENTE em JSON válido, seguindo este schema:
{
  "title": string,
  "spec": {
    "overview": { "objective": string, "summary": string },
    "strategy": { "title": string, "text": string, "steps": string[] },
    "goals": {
      "items": [
        { "title": string, "description": string, "target": number|null, "current": number|null, "deadline": string, "category": string }
      ],
      "suggested": [
        { "title": string, "description": string, "target": number|null, "deadline": string, "category": string }
      ]
    },
    "risks": [
      { "title": string, "severity": "Alto"|"Médio"|"Baixo", "description": string, "mitigation": string }
    ]
  }
}`

// PlanInput 组装消息所需的信息
type PlanInput struct {
	Objective string
	Template  string
	Persona   string
	Prompt    string
	Context   any
	Intent    string
	Lang      string
	Warnings  []string
}

type hints struct {
	Intent string   `json:"intent"`
	Lang   string   `json:"lang"`
	Notes  []string `json:"notes"`
}

// BuildMessages 生成 system + user 两条消息，上下文 JSON 原样嵌入
func BuildMessages(in PlanInput) ([]llm.Message, error) {
	objective := orDefault(in.Objective, DefaultObjective)
	persona := orDefault(in.Persona, DefaultPersona)
	template := orDefault(in.Template, DefaultTemplate)

	var b strings.Builder
	fmt.Fprintf(&b, "Objetivo: %s\n", objective)
	fmt.Fprintf(&b, "Template: %s\n", template)
	fmt.Fprintf(&b, "Persona: %s\n", persona)
	if in.Prompt != "" {
		fmt.Fprintf(&b, "PromptDoUsuário: %s\n", in.Prompt)
	}

	if in.Context != nil {
		ctxJSON, err := compactJSON(in.Context)
		if err != nil {
			return nil, fmt.Errorf("序列化财务上下文失败: %w", err)
		}
		b.WriteString("ContextoFinanceiroJSON:\n")
		b.Write(ctxJSON)
		b.WriteString("\n\n")
	}

	notes := in.Warnings
	if len(notes) > 3 {
		notes = notes[:3]
	}
	if notes == nil {
		notes = []string{}
	}
	hintJSON, err := compactJSON(hints{
		Intent: orDefault(in.Intent, IntentGeneral),
		Lang:   orDefault(in.Lang, "pt"),
		Notes:  notes,
	})
	if err != nil {
		return nil, err
	}
	b.WriteString("Orientações:\n")
	b.Write(hintJSON)
	b.WriteString("\n\n")
	b.WriteString(PlanSchemaHint)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}, nil
}

// compactJSON 紧凑输出且不转义非 ASCII 与 HTML 字符
func compactJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
