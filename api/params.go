package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// 分页参数
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// parseID 解析路径参数 id，失败时直接返回 400
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "ID inválido.")
		return 0, false
	}
	return uint(id), true
}

// pagination 读取 page/page_size，非法值回落到默认
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// archivedFilter is_archived 三态: true/1 归档, false/0/缺省 未归档, 其他值不过滤
func archivedFilter(raw string) *bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "true", "1":
		b := true
		return &b
	case "", "false", "0":
		b := false
		return &b
	}
	return nil
}

// optionalUint 读取可选的正整数查询参数
func optionalUint(c *gin.Context, key string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("%s inválido", key)
	}
	v := uint(n)
	return &v, nil
}

// Amount 金额，JSON 中可为字符串或数字
type Amount string

// UnmarshalJSON 接受 "12.50" 与 12.5 两种写法
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("valor inválido: %s", data)
	}
	*a = Amount(n.String())
	return nil
}
