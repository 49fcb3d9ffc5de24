package prompt

import (
	"math"
	"sort"
	"strings"
)

const (
	financialThreshold = 1.2
	negativePenalty    = 0.8
)

type weightedIntent struct {
	label     string
	keywords  map[string]float64
	negatives []string
}

var weightedIntents = []weightedIntent{
	{
		label: "orcamento",
		keywords: map[string]float64{
			"orçamento": 1.0, "orcamento": 1.0, "planejamento": 0.9, "gastos": 0.9,
			"despesas": 1.0, "receitas": 0.9, "poupar": 0.9, "economizar": 1.0,
			"metas": 0.6, "objetivo": 0.4, "saldo": 0.6, "dinheiro": 0.5,
		},
		negatives: []string{"piada", "história", "politica", "jogo", "programação"},
	},
	{
		label: "investimentos",
		keywords: map[string]float64{
			"investir": 1.0, "investimentos": 1.0, "renda fixa": 0.7, "tesouro": 0.9,
			"cdb": 0.9, "selic": 0.7, "bolsa": 0.8, "ações": 0.8, "fundos": 0.6,
			"perfil de risco": 0.7, "rentabilidade": 0.6,
		},
		negatives: []string{"trader esportivo", "cassino", "aposta"},
	},
	{
		label: "dividas",
		keywords: map[string]float64{
			"dívida": 1.0, "divida": 1.0, "cartão": 0.9, "cartao": 0.9, "juros": 0.9,
			"renegociar": 0.9, "quitar": 0.9, "parcelas": 0.7, "inadimplência": 0.7,
		},
	},
	{
		label: "objetivos",
		keywords: map[string]float64{
			"meta": 1.0, "objetivo": 1.0, "guardar": 0.9, "juntar": 0.9, "prazo": 0.7,
			"comprar": 0.6, "carro": 0.5, "imóvel": 0.7, "viagem": 0.6,
		},
	},
}

var redFlags = []string{
	"ignore previous", "disregard instructions", "system:", "you are now",
	"roleplay", "sudo", "execute code", "run code", "javascript:", "eval(",
}

// LabelScore 单个标签得分
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// IntentScore 加权意图分类结果
type IntentScore struct {
	IsFinancial bool         `json:"is_financial"`
	Label       string       `json:"label,omitempty"`
	Score       float64      `json:"score"`
	Top         []LabelScore `json:"top"`
}

// ScoreIntent 按关键词权重打分，命中负面词扣分，最低为 0
// 最高分 >= 1.2 视为财务相关
func ScoreIntent(text string) IntentScore {
	if strings.TrimSpace(text) == "" {
		return IntentScore{Top: []LabelScore{}}
	}
	lower := strings.ToLower(text)
	for _, flag := range redFlags {
		if strings.Contains(lower, flag) {
			return IntentScore{Top: []LabelScore{}}
		}
	}

	padded := " " + lower + " "
	scores := make([]LabelScore, 0, len(weightedIntents))
	for _, intent := range weightedIntents {
		scores = append(scores, LabelScore{Label: intent.label, Score: scoreOne(padded, intent)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	best := scores[0]
	out := IntentScore{
		IsFinancial: best.Score >= financialThreshold,
		Score:       round3(best.Score),
		Top:         scores[:3],
	}
	if out.IsFinancial {
		out.Label = best.Label
	}
	return out
}

func scoreOne(text string, intent weightedIntent) float64 {
	score := 0.0
	for kw, w := range intent.keywords {
		if strings.Contains(text, kw) {
			score += w
		}
	}
	for _, bad := range intent.negatives {
		if strings.Contains(text, bad) {
			score -= negativePenalty
		}
	}
	return math.Max(0, score)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
