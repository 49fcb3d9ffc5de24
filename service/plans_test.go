package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var planColumns = []string{"id", "user_id", "title", "template", "objective", "spec", "model", "temperature", "tokens", "created_at", "updated_at"}

func TestNewPlan(t *testing.T) {
	data := map[string]any{
		"title": "  Quitar dívidas  ",
		"spec":  map[string]any{"overview": map[string]any{"summary": "ok"}},
	}
	plan, err := NewPlan(3, "generico", "Sair do vermelho", "llama", 0.5, 900, data)
	require.NoError(t, err)

	assert.Equal(t, uint(3), plan.UserID)
	assert.Equal(t, "Quitar dívidas", plan.Title)
	assert.Equal(t, 900, plan.Tokens)

	var spec map[string]any
	require.NoError(t, json.Unmarshal(plan.Spec, &spec))
	assert.Equal(t, "ok", spec["overview"].(map[string]any)["summary"])
}

func TestPlanStore_SavePlan(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ai_plans`").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	plan, err := NewPlan(1, "generico", "obj", "m", 0.4, 10, map[string]any{"title": "T", "spec": map[string]any{"a": 1}})
	require.NoError(t, err)
	require.NoError(t, NewPlanStore(db).SavePlan(context.Background(), plan))
	assert.Equal(t, uint(11), plan.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanStore_List(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `ai_plans` WHERE user_id = \\? AND \\(title LIKE \\? OR objective LIKE \\? OR template LIKE \\?\\)").
		WithArgs(1, "%100\\%%", "%100\\%%", "%100\\%%").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `ai_plans` .* ORDER BY updated_at ASC,id DESC LIMIT 10 OFFSET 10").
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(5, 1, "Plano", "generico", "obj", `{"a":1}`, "m", 0.4, 10, now, now))

	list, total, err := NewPlanStore(db).List(context.Background(), 1, PlanQuery{Search: "100%", Ordering: "updated_at", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Plano", list[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanStore_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `ai_plans` WHERE id = \\? AND user_id = \\?").
		WithArgs(9, 1).
		WillReturnRows(sqlmock.NewRows(planColumns))

	_, err := NewPlanStore(db).Get(context.Background(), 1, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanStore_UpdateTitle(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM `ai_plans` WHERE id = \\? AND user_id = \\?").
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(5, 1, "Antigo", "generico", "obj", `{"a":1}`, "m", 0.4, 10, now, now))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `ai_plans` SET `title`=\\?,`updated_at`=\\? WHERE `id` = \\?").
		WithArgs("Novo", sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plan, err := NewPlanStore(db).UpdateTitle(context.Background(), 1, 5, "  Novo  ")
	require.NoError(t, err)
	assert.Equal(t, "Novo", plan.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanStore_UpdateTitle_BlankRejected(t *testing.T) {
	db, mock := newMockDB(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := NewPlanStore(db).UpdateTitle(context.Background(), 1, 5, title)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "%q", title)
		assert.Equal(t, MsgTitleRequired, verr.Message)
	}
	// 不访问数据库
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanStore_DeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `ai_plans` WHERE id = \\? AND user_id = \\?").
		WithArgs(9, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewPlanStore(db).Delete(context.Background(), 1, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, EscapeLike(`a%b_c\d`))
}
