package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	leadingFence   = regexp.MustCompile("^```[a-zA-Z0-9_-]*\\s*")
	trailingFence  = regexp.MustCompile("\\s*```$")
	trailingCommas = regexp.MustCompile(`,(\s*[}\]])`)
	danglingSep    = regexp.MustCompile(`[,:]\s*$`)
)

// ExtractJSON 从模型输出中提取 JSON 对象
// 依次尝试：去掉代码块标记、截取 {...}、严格解析、删除尾随逗号、补全未闭合的字符串与括号。
// 全部失败时返回 nil。
func ExtractJSON(text string) map[string]any {
	s := strings.TrimSpace(text)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")

	start := strings.Index(s, "{")
	if start < 0 {
		return nil
	}
	tail := s[start:]
	candidate := tail
	if end := strings.LastIndex(s, "}"); end > start {
		candidate = s[start : end+1]
	}

	if obj, ok := decodeObject(candidate); ok {
		return obj
	}

	noCommas := trailingCommas.ReplaceAllString(candidate, "$1")
	if obj, ok := decodeObject(noCommas); ok {
		return obj
	}

	// 截断的输出里最后一个 } 可能位于字符串内部，先按完整尾部修复
	for _, c := range []string{tail, candidate} {
		if obj, ok := decodeObject(repairTruncated(trailingCommas.ReplaceAllString(c, "$1"))); ok {
			return obj
		}
	}
	return nil
}

// repairTruncated 闭合未结束的字符串，去掉结尾悬空的分隔符，按嵌套顺序补齐括号
func repairTruncated(s string) string {
	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		if escaped {
			// 末尾孤立的反斜杠会吞掉补上的引号
			out := strings.TrimSuffix(b.String(), "\\")
			b.Reset()
			b.WriteString(out)
		}
		b.WriteByte('"')
	}

	out := danglingSep.ReplaceAllString(strings.TrimRight(b.String(), " \t\r\n"), "")
	b.Reset()
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return trailingCommas.ReplaceAllString(b.String(), "$1")
}

func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	// 对象之后不允许还有其他内容
	if dec.More() {
		return nil, false
	}
	return obj, true
}

// ErrIncompletePlan 计划缺少 title 或 spec
var ErrIncompletePlan = errors.New("Resposta incompleta: faltam 'title' ou 'spec'")

// ValidatePlan title 为非空字符串，spec 为非空对象
func ValidatePlan(obj map[string]any) error {
	if obj == nil {
		return ErrIncompletePlan
	}
	title, _ := obj["title"].(string)
	spec, _ := obj["spec"].(map[string]any)
	if strings.TrimSpace(title) == "" || len(spec) == 0 {
		return ErrIncompletePlan
	}
	return nil
}

// Preview 截取前 n 个字符用于错误提示
func Preview(text string, n int) string {
	return truncate(text, n)
}
