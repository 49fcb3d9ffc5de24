package api

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/models"
	"fintrack/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionColumns = []string{"id", "user_id", "wallet_id", "type", "category_id", "amount", "date", "description", "is_archived", "created_at", "updated_at"}

func newTransactionRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTransactionHandler(time.UTC, nil)
	r := gin.New()
	r.Use(setUserIDMiddleware(userID))
	r.GET("/transactions", h.List)
	r.POST("/transactions", h.Create)
	r.DELETE("/transactions/bulk", h.BulkDelete)
	r.GET("/transactions/recent", h.Recent)
	r.POST("/transactions/transfer", h.Transfer)
	r.GET("/transactions/:id", h.Get)
	r.PUT("/transactions/:id", h.Update)
	r.DELETE("/transactions/:id", h.Delete)
	return r
}

func postJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WithArgs(2, 1, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(3, 1, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	body := `{"wallet_id":2,"type":"expense","category_id":3,"amount":"42,90","date":"2024-04-15","description":"  Feira  "}`
	w := postJSON(newTransactionRouter(1), "POST", "/transactions", body)

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "42.9", data["amount"])
	assert.Equal(t, "Feira", data["description"])
	assert.Equal(t, "expense", data["type"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_WalletNotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WithArgs(8, 1, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	w := postJSON(newTransactionRouter(1), "POST", "/transactions", `{"wallet_id":8,"type":"income","amount":10}`)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, MsgWalletNotOwned, decodeResponse(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_Validation(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	w := postJSON(newTransactionRouter(1), "POST", "/transactions", `{"type":"income","amount":10}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, MsgWalletRequired, decodeResponse(t, w)["message"])

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WithArgs(2, 1, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	w = postJSON(newTransactionRouter(1), "POST", "/transactions", `{"wallet_id":2,"type":"income","amount":"-5"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, service.MsgNonPositiveAmount, decodeResponse(t, w)["message"])

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WithArgs(2, 1, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	w = postJSON(newTransactionRouter(1), "POST", "/transactions", `{"wallet_id":2,"type":"gift","amount":"5"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, MsgInvalidType, decodeResponse(t, w)["message"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_FiltersAndOrdering(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE user_id = \\? AND type = \\? AND description LIKE \\? AND is_archived = \\?").
		WithArgs(1, "expense", `%50\%%`, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE .* ORDER BY amount DESC,id DESC LIMIT 20").
		WithArgs(1, "expense", `%50\%%`, false).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(4, 1, 2, "expense", nil, "50.00", now, "Desconto 50%", false, now, now))

	w := httptest.NewRecorder()
	newTransactionRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/transactions?type=expense&q=50%25&ordering=-amount", nil))

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(20), data["page_size"])
	require.Len(t, data["list"], 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_InvalidOrderingFallsBack(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WithArgs(1, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE .* ORDER BY date DESC,id DESC LIMIT 200 OFFSET 200").
		WithArgs(1, false).
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	w := httptest.NewRecorder()
	newTransactionRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/transactions?ordering=password&page=2&page_size=1000", nil))

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(200), data["page_size"])
	assert.Empty(t, data["list"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_BadFilter(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	for _, q := range []string{"date_start=15-04-2024", "type=gift", "wallet_id=x", "category_id=-1"} {
		w := httptest.NewRecorder()
		newTransactionRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/transactions?"+q, nil))
		assert.Equal(t, 400, w.Code, q)
	}
}

func TestTransactionHandler_BulkDelete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions` WHERE user_id = \\? AND id IN \\(\\?,\\?,\\?\\)").
		WithArgs(1, 4, 5, 6).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	w := postJSON(newTransactionRouter(1), "DELETE", "/transactions/bulk", `{"ids":[4,5,6]}`)

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["deleted"])
	require.NoError(t, mock.ExpectationsWereMet())

	w = postJSON(newTransactionRouter(1), "DELETE", "/transactions/bulk", `{"ids":[]}`)
	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE id = \\? AND user_id = \\?").
		WithArgs(4, 1).
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	w := httptest.NewRecorder()
	newTransactionRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/transactions/4", nil))

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, MsgTransactionNotFound, decodeResponse(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Recent(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE .* ORDER BY transactions.date DESC, transactions.id DESC LIMIT 50").
		WithArgs(1, false).
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	w := httptest.NewRecorder()
	newTransactionRouter(1).ServeHTTP(w, httptest.NewRequest("GET", "/transactions/recent?limit=500", nil))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, []interface{}{}, decodeResponse(t, w)["data"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Transfer(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets` WHERE id IN \\(\\?,\\?\\) AND user_id = \\? AND is_archived = \\?").
		WithArgs(1, 2, 5, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow(9, nil, models.TransferCategoryName, true, false, time.Now(), time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectExec("INSERT INTO `transactions`").WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	body := `{"from_wallet_id":1,"to_wallet_id":2,"amount":300,"date":"2024-04-15"}`
	w := postJSON(newTransactionRouter(5), "POST", "/transactions/transfer", body)

	assert.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	expense := data["expense"].(map[string]interface{})
	income := data["income"].(map[string]interface{})
	assert.Equal(t, "expense", expense["type"])
	assert.Equal(t, float64(1), expense["wallet_id"])
	assert.Equal(t, "income", income["type"])
	assert.Equal(t, float64(2), income["wallet_id"])
	assert.Equal(t, models.TransferCategoryName, income["description"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Transfer_Errors(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	w := postJSON(newTransactionRouter(5), "POST", "/transactions/transfer", `{"from_wallet_id":1,"to_wallet_id":1,"amount":"10"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, service.MsgSameWallet, decodeResponse(t, w)["message"])

	w = postJSON(newTransactionRouter(5), "POST", "/transactions/transfer", `{"from_wallet_id":1,"to_wallet_id":2,"amount":"abc"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, service.MsgInvalidAmount, decodeResponse(t, w)["message"])

	// 他人或已归档的钱包不区分，统一提示
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WithArgs(1, 2, 5, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	w = postJSON(newTransactionRouter(5), "POST", "/transactions/transfer", `{"from_wallet_id":1,"to_wallet_id":2,"amount":"10"}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, service.ErrWalletNotFound.Error(), decodeResponse(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_DateRangeBindsDays(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	h := NewTransactionHandler(time.FixedZone("BRT", -3*60*60), nil)
	r := gin.New()
	r.Use(setUserIDMiddleware(1))
	r.GET("/transactions", h.List)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE user_id = \\? AND date >= \\? AND date <= \\?").
		WithArgs(1, "2024-03-01", "2024-03-31", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM `transactions`").
		WithArgs(1, "2024-03-01", "2024-03-31", false).
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/transactions?date_start=2024-03-01&date_end=2024-03-31", nil))

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
