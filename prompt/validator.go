// Package prompt 用户提示词的校验、意图识别与消息组装
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// 默认长度限制（按字符计）
const (
	DefaultMinLength = 20
	DefaultMaxLength = 2000
)

// 校验错误与提示
const (
	MsgInvalid          = "Prompt inválido"
	MsgInjection        = "Conteúdo suspeito de prompt injection detectado"
	WarnNotFinancial    = "O texto não parece claramente financeiro; ajustei o contexto para finanças pessoais."
	IntentGeneral       = "general_finance"
	msgTooShortTemplate = "Prompt muito curto (mínimo %d caracteres)"
	msgTooLongTemplate  = "Prompt muito longo (máximo %d caracteres)"
)

var financialKeywords = []string{
	"economizar", "poupar", "investir", "dinheiro", "reais", "r$", "renda", "salário", "salario",
	"despesa", "receita", "financeiro", "financeira", "orçamento", "orcamento", "meta", "objetivo",
	"guardar", "juntar", "gastar", "pagar", "dívida", "divida", "conta", "banco", "cartão", "cartao",
	"comprar", "vender", "lucro", "prejuízo", "prejuizo", "saldo", "valor", "custo", "preço", "preco", "taxa",
	"financiar", "financiamento", "imóvel", "imovel", "apartamento", "casa", "entrada", "sinal", "hipoteca", "parcela",
	"tesouro", "cdb", "selic", "fundo", "ações", "acoes", "rendimento", "juros",
}

var injectionPatterns = compileAll(
	`ignore\s+(previous|above|all|earlier)\s+instructions?`,
	`disregard\s+(previous|above|all)\s+instructions?`,
	`\bsystem\s*:`,
	`\byou\s+are\s+(now|a|an)\s+`,
	`forget\s+(everything|all|previous|what)`,
	`new\s+instructions?`,
	`<\s*script`,
	`javascript:`,
	`eval\s*\(`,
	`pretend\s+to\s+be`,
	`roleplay\s+as`,
	`act\s+as\s+(if|a|an)`,
	`override\s+`,
	`\bsudo\s+`,
	`\{\{.*?\}\}`,
	`\bexecute\s+`,
	`\brun\s+code`,
)

// 意图按顺序匹配，先命中者优先
var intentBuckets = []struct {
	intent   string
	keywords []string
}{
	{"home_purchase", []string{"financiar", "financiamento", "imóvel", "imovel", "apartamento", "casa", "entrada", "sinal", "hipoteca", "parcela"}},
	{"debt_strategy", []string{"dívida", "divida", "cartão", "cartao", "juros", "renegociar", "parcelar"}},
	{"budgeting", []string{"orçamento", "orcamento", "gastos", "despesa", "categoria", "controle"}},
	{"investing", []string{"investir", "investimento", "tesouro", "cdb", "ações", "acoes", "selic", "fundo", "rendimento"}},
	{"savings_goal", []string{"economizar", "poupar", "guardar", "juntar", "meta", "objetivo"}},
}

var (
	unsafeChars = regexp.MustCompile(`[<>{}\\]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Result 校验结果
type Result struct {
	Valid      bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	Lang       string   `json:"lang,omitempty"`
	Intent     string   `json:"intent"`
	Normalized string   `json:"normalized"`
}

// Validator 提示词校验器
type Validator struct {
	MinLength int
	MaxLength int
	// DetectLang 可替换的语言识别函数
	DetectLang func(string) string
}

// NewValidator 创建校验器，非法长度使用默认值
func NewValidator(minLength, maxLength int) *Validator {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Validator{MinLength: minLength, MaxLength: maxLength, DetectLang: DetectLanguage}
}

// Validate 校验并分类提示词
func (v *Validator) Validate(raw string) Result {
	out := Result{Valid: true, Errors: []string{}, Warnings: []string{}, Intent: IntentGeneral}

	text := strings.TrimSpace(raw)
	if text == "" {
		out.Valid = false
		out.Errors = append(out.Errors, MsgInvalid)
		return out
	}

	n := utf8.RuneCountInString(text)
	if n < v.MinLength {
		out.Valid = false
		out.Errors = append(out.Errors, fmt.Sprintf(msgTooShortTemplate, v.MinLength))
	}
	if n > v.MaxLength {
		out.Valid = false
		out.Errors = append(out.Errors, fmt.Sprintf(msgTooLongTemplate, v.MaxLength))
	}

	lower := strings.ToLower(text)
	if HasInjection(lower) {
		out.Valid = false
		out.Errors = append(out.Errors, MsgInjection)
	}

	if !LooksFinancial(lower) {
		out.Warnings = append(out.Warnings, WarnNotFinancial)
	}

	if v.DetectLang != nil {
		out.Lang = v.DetectLang(text)
	}
	out.Intent = ClassifyIntent(lower)
	out.Normalized = Sanitize(text, v.MaxLength)

	return out
}

// HasInjection 是否包含提示词注入特征，输入需为小写
func HasInjection(lower string) bool {
	for _, re := range injectionPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// LooksFinancial 是否包含财务词汇，输入需为小写
func LooksFinancial(lower string) bool {
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ClassifyIntent 关键词意图分类，输入需为小写
func ClassifyIntent(lower string) string {
	for _, b := range intentBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b.intent
			}
		}
	}
	return IntentGeneral
}

// Sanitize 去除 <>{}\ 并压缩空白，按字符截断到 maxLength
func Sanitize(text string, maxLength int) string {
	s := unsafeChars.ReplaceAllString(text, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if maxLength > 0 && utf8.RuneCountInString(s) > maxLength {
		s = string([]rune(s)[:maxLength])
	}
	return s
}
