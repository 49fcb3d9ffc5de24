package prompt

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

var ptAliases = map[string]bool{"pt": true, "pt-br": true, "pt_br": true}

// DetectLanguage 返回 ISO 639-1 语言代码，无法识别时返回空字符串
func DetectLanguage(text string) (lang string) {
	defer func() {
		if recover() != nil {
			lang = ""
		}
	}()

	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return ""
	}
	return NormalizeLang(info.Lang.Iso6391())
}

// NormalizeLang 葡萄牙语变体统一为 pt
func NormalizeLang(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if ptAliases[c] {
		return "pt"
	}
	return c
}
