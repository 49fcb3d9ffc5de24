package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fintrack/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MsgTitleRequired 标题为空
const MsgTitleRequired = "Informe um título."

// PlanOrderings 计划列表允许的排序
var PlanOrderings = map[string]string{
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
	"updated_at":  "updated_at ASC",
	"-updated_at": "updated_at DESC",
}

// PlanQuery 计划列表查询条件
type PlanQuery struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// PlanStore AI 计划持久化
type PlanStore struct {
	db *gorm.DB
}

// NewPlanStore 创建计划存储
func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// NewPlan 由模型返回的计划对象构建记录
func NewPlan(userID uint, template, objective, model string, temperature float64, tokens int, data map[string]any) (*models.AIPlan, error) {
	spec, err := json.Marshal(data["spec"])
	if err != nil {
		return nil, fmt.Errorf("序列化计划失败: %w", err)
	}
	title, _ := data["title"].(string)
	return &models.AIPlan{
		UserID:      userID,
		Title:       truncateRunes(strings.TrimSpace(title), 200),
		Template:    truncateRunes(template, 60),
		Objective:   truncateRunes(objective, 300),
		Spec:        datatypes.JSON(spec),
		Model:       truncateRunes(model, 60),
		Temperature: temperature,
		Tokens:      tokens,
	}, nil
}

// SavePlan 保存计划
func (s *PlanStore) SavePlan(ctx context.Context, plan *models.AIPlan) error {
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("保存计划失败: %w", err)
	}
	return nil
}

// List 分页查询用户的计划
func (s *PlanStore) List(ctx context.Context, userID uint, q PlanQuery) ([]models.AIPlan, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.AIPlan{}).Where("user_id = ?", userID)
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + EscapeLike(search) + "%"
		db = db.Where("(title LIKE ? OR objective LIKE ? OR template LIKE ?)", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := PlanOrderings[q.Ordering]
	if !ok {
		order = PlanOrderings["-created_at"]
	}
	var list []models.AIPlan
	err := db.Order(order).Order("id DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Get 查询单个计划
func (s *PlanStore) Get(ctx context.Context, userID, id uint) (*models.AIPlan, error) {
	var plan models.AIPlan
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateTitle 修改标题，去除空白后不能为空
func (s *PlanStore) UpdateTitle(ctx context.Context, userID, id uint, title string) (*models.AIPlan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError(MsgTitleRequired)
	}
	plan, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	plan.Title = truncateRunes(title, 200)
	if err := s.db.WithContext(ctx).Model(plan).Update("title", plan.Title).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete 删除计划
func (s *PlanStore) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.AIPlan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EscapeLike 转义 LIKE 通配符
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
