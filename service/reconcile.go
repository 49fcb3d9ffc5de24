package service

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxCategoryDistance 类别名称匹配的最大编辑距离
const maxCategoryDistance = 2

// MatchCategory 返回与 name 最接近的已知类别名称，忽略大小写
// 距离超过阈值时返回原值
func MatchCategory(name string, known []string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" || len(known) == 0 {
		return name
	}

	best, bestDist := "", maxCategoryDistance+1
	for _, k := range known {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(k))
		if d < bestDist {
			best, bestDist = k, d
			if d == 0 {
				break
			}
		}
	}
	if best == "" {
		return name
	}
	return best
}

// ReconcileGoalCategories 将计划中 goals.items 与 goals.suggested 的 category 对齐到已知类别
// 返回被修改的数量
func ReconcileGoalCategories(plan map[string]any, known []string) int {
	spec, ok := plan["spec"].(map[string]any)
	if !ok {
		return 0
	}
	goals, ok := spec["goals"].(map[string]any)
	if !ok {
		return 0
	}

	changed := 0
	for _, key := range []string{"items", "suggested"} {
		list, ok := goals[key].([]any)
		if !ok {
			continue
		}
		for _, raw := range list {
			goal, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			cat, ok := goal["category"].(string)
			if !ok {
				continue
			}
			if matched := MatchCategory(cat, known); matched != cat {
				goal["category"] = matched
				changed++
			}
		}
	}
	return changed
}
