package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcheck/backend/pkg/utils"
)

func newLoginRouter(t *testing.T, pin string) (*gin.Engine, *JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := utils.HashSecret(pin)
	require.NoError(t, err)

	jwtService := NewJWTService("test-secret", 1)
	r := gin.New()
	r.POST("/admin/login", NewHandler(jwtService, hash, nil).Login)
	return r, jwtService
}

func postLogin(r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_CorrectPIN(t *testing.T) {
	r, jwtService := newLoginRouter(t, "482019")

	w := postLogin(r, gin.H{"pin": "482019"})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	assert.Equal(t, RoleAdmin, body.Data.Role)

	claims, err := jwtService.Validate(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestLogin_WrongPIN(t *testing.T) {
	r, _ := newLoginRouter(t, "482019")

	w := postLogin(r, gin.H{"pin": "000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MissingPIN(t *testing.T) {
	r, _ := newLoginRouter(t, "482019")

	w := postLogin(r, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
