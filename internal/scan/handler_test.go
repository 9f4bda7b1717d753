package scan

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScanRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/scan", NewHandler().Resolve)
	return r
}

func postScan(r *gin.Engine, payload interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(payload)
	req := httptest.NewRequest(http.MethodPost, "/scan", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolve_ValidCode(t *testing.T) {
	r := newScanRouter()
	id := uuid.New()

	w := postScan(r, gin.H{"payload": "https://event.example.com/attendee/" + id.String()})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			AttendeeID uuid.UUID `json:"attendee_id"`
			Path       string    `json:"path"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, id, body.Data.AttendeeID)
	assert.Equal(t, "/attendee/"+id.String(), body.Data.Path)
}

func TestResolve_InvalidCode(t *testing.T) {
	r := newScanRouter()

	w := postScan(r, gin.H{"payload": "not-a-url"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestResolve_MissingPayload(t *testing.T) {
	r := newScanRouter()

	w := postScan(r, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
