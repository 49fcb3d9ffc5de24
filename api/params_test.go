package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivedFilter(t *testing.T) {
	yes, no := true, false
	cases := map[string]*bool{
		"":      &no,
		"false": &no,
		"0":     &no,
		"true":  &yes,
		"1":     &yes,
		" TRUE": &yes,
		"all":   nil,
		"sim":   nil,
	}
	for raw, want := range cases {
		assert.Equal(t, want, archivedFilter(raw), raw)
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var req struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12,50","b":12.5,"c":null}`), &req))
	assert.Equal(t, Amount("12,50"), req.A)
	assert.Equal(t, Amount("12.5"), req.B)
	assert.Equal(t, Amount(""), req.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &req))
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, DefaultPageSize},
		{"page=3&page_size=50", 3, 50},
		{"page=-1&page_size=0", 1, DefaultPageSize},
		{"page=x&page_size=5000", 1, MaxPageSize},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/?"+tc.query, nil)
		page, size := pagination(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.pageSize, size, tc.query)
	}
}

func TestOptionalUint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?wallet_id=7&category_id=0&x=abc", nil)

	v, err := optionalUint(c, "wallet_id")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint(7), *v)

	v, err = optionalUint(c, "missing")
	assert.NoError(t, err)
	assert.Nil(t, v)

	_, err = optionalUint(c, "category_id")
	assert.Error(t, err)
	_, err = optionalUint(c, "x")
	assert.Error(t, err)
}
