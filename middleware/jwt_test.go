package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSecret(t *testing.T, secret string) {
	InitJWT(&config.Config{JWT: config.JWTConfig{Secret: secret}})
	t.Cleanup(func() { jwtSecret = nil })
}

func TestToken_RoundTripCarriesIdentity(t *testing.T) {
	useSecret(t, "wallet-secret")

	token, err := GenerateToken(7, "maria", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "fintrack", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseToken_Rejects(t *testing.T) {
	useSecret(t, "wallet-secret")

	expired, err := GenerateToken(7, "maria", -time.Minute)
	require.NoError(t, err)

	InitJWT(&config.Config{JWT: config.JWTConfig{Secret: "outro-segredo"}})
	foreign, err := GenerateToken(7, "maria", time.Hour)
	require.NoError(t, err)
	InitJWT(&config.Config{JWT: config.JWTConfig{Secret: "wallet-secret"}})

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"vazio":          "",
		"lixo":           "abc.def.ghi",
		"expirado":       expired,
		"outro segredo":  foreign,
		"sem assinatura": unsigned,
	}
	for name, token := range cases {
		_, err := ParseToken(token)
		assert.Error(t, err, name)
	}
}

func TestJWTAuth_Responses(t *testing.T) {
	useSecret(t, "wallet-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/me", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetCurrentUserID(c), "username": c.GetString("username")})
	})

	valid, err := GenerateToken(42, "joao", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(42, "joao", -time.Second)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"sem cabeçalho", "", http.StatusUnauthorized, "Não autenticado."},
		{"esquema errado", "Basic " + valid, http.StatusUnauthorized, "Não autenticado."},
		{"bearer vazio", "Bearer   ", http.StatusUnauthorized, "Não autenticado."},
		{"expirado", "Bearer " + expired, http.StatusUnauthorized, "Token inválido ou expirado."},
		{"válido", "Bearer " + valid, http.StatusOK, `"username":"joao"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestGetCurrentUserID_IgnoresForeignTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetCurrentUserID(c))

	c.Set(ContextUserIDKey, 99)
	assert.Zero(t, GetCurrentUserID(c))

	c.Set(ContextUserIDKey, uint(99))
	assert.Equal(t, uint(99), GetCurrentUserID(c))
}
