package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportColumns = []string{"id", "date", "type", "wallet", "category", "description", "amount"}

func newExportRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(time.UTC)
	r := gin.New()
	r.Use(setUserIDMiddleware(userID))
	r.GET("/export/csv", h.ExportCSV)
	r.GET("/export/xlsx", h.ExportXLSX)
	return r
}

func TestExportHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT transactions.id, .* FROM `transactions` JOIN wallets .* LEFT JOIN categories .* ORDER BY transactions.date ASC, transactions.id ASC").
		WithArgs(1, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(exportColumns).
			AddRow(1, day, "expense", "Conta", "Mercado", "Feira", "99.99").
			AddRow(2, day, "income", "Conta", nil, "Salário", "3000.00"))

	w := httptest.NewRecorder()
	newExportRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/export/csv?date_start=2024-01-01&date_end=2024-01-31", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transacoes_2024-01-01_2024-01-31.csv")

	body := strings.TrimPrefix(w.Body.String(), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Data,Tipo,Carteira,Categoria,Descrição,Valor", lines[0])
	assert.Equal(t, "1,2024-01-10,Despesa,Conta,Mercado,Feira,-99.99", lines[1])
	assert.Equal(t, "2,2024-01-10,Receita,Conta,Sem categoria,Salário,3000.00", lines[2])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportXLSX(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT transactions.id, .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(exportColumns).
			AddRow(1, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "expense", "Conta", "Mercado", "Feira", "10.00"))

	w := httptest.NewRecorder()
	newExportRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/export/xlsx?date_start=2024-01-01&date_end=2024-01-31", nil))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx 为 zip 格式
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_InvalidRange(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	for _, q := range []string{
		"date_start=2024-02-01&date_end=2024-01-01",
		"date_start=01/02/2024",
		"date_end=amanha",
	} {
		w := httptest.NewRecorder()
		newExportRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/export/csv?"+q, nil))
		assert.Equal(t, 400, w.Code, q)
	}
}
