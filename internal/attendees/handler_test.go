package attendees

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcheck/backend/internal/models"
	"github.com/swiftcheck/backend/pkg/response"
)

func newTestRouter(t *testing.T, capacity int) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, capacity)
	h := NewHandler(svc, 16, 100, nil)

	r := gin.New()
	r.POST("/attendees", h.Register)
	r.GET("/attendees/:id", h.GetByID)
	r.POST("/attendees/:id/checkin", h.CheckIn)
	r.GET("/admin/attendees", h.List)
	r.GET("/admin/attendees/export", h.ExportCSV)
	r.GET("/admin/stats", h.GetStats)
	return r, svc
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAttendee(t *testing.T, w *httptest.ResponseRecorder) models.Attendee {
	t.Helper()
	var body struct {
		Success bool            `json:"success"`
		Data    models.Attendee `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestHandler_Register(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	w := doJSON(r, http.MethodPost, "/attendees", gin.H{"name": "Jane Doe", "email": "jane@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	att := decodeAttendee(t, w)
	assert.Equal(t, "Jane Doe", att.Name)
	assert.False(t, att.CheckedIn)
	assert.Contains(t, att.QRCodeValue, "/attendee/"+att.ID.String())
}

func TestHandler_Register_Validation(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"email": "jane@example.com"}},
		{"short name", gin.H{"name": "J", "email": "jane@example.com"}},
		{"bad email", gin.H{"name": "Jane Doe", "email": "not-an-email"}},
		{"bad dob format", gin.H{"name": "Jane Doe", "email": "jane@example.com", "date_of_birth": "01/02/2000"}},
		{"under age", gin.H{"name": "Jane Doe", "email": "jane@example.com", "date_of_birth": "2020-01-01"}},
		{"bad image uri", gin.H{"name": "Jane Doe", "email": "jane@example.com", "profile_image_uri": "not a url"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/attendees", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_Register_CapacityConflict(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	w := doJSON(r, http.MethodPost, "/attendees", gin.H{"name": "Jane Doe", "email": "jane@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/attendees", gin.H{"name": "John Doe", "email": "john@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestHandler_CheckInFlow(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	w := doJSON(r, http.MethodPost, "/attendees", gin.H{"name": "Jane Doe", "email": "jane@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	att := decodeAttendee(t, w)

	// attendee page reads from the live view
	w = doJSON(r, http.MethodGet, "/attendees/"+att.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/attendees/"+att.ID.String()+"/checkin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeAttendee(t, w)
	assert.True(t, first.CheckedIn)
	require.NotNil(t, first.CheckInTime)

	// double scan: no error, same check-in time
	w = doJSON(r, http.MethodPost, "/attendees/"+att.ID.String()+"/checkin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeAttendee(t, w)
	require.NotNil(t, second.CheckInTime)
	assert.True(t, first.CheckInTime.Equal(*second.CheckInTime))
}

func TestHandler_CheckIn_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	w := doJSON(r, http.MethodPost, "/attendees/"+uuid.New().String()+"/checkin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/attendees/not-a-uuid/checkin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ExportCSV(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	w := doJSON(r, http.MethodPost, "/attendees", gin.H{"name": "Jane Doe", "email": "jane@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/admin/attendees/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), CSVFilename)
	assert.Contains(t, w.Body.String(), "ID,Name,Email,Checked In,Check-in Time,Registered At")
	assert.Contains(t, w.Body.String(), "jane@example.com")
}

func TestAgeAt(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}
	cases := []struct {
		name string
		dob  time.Time
		now  time.Time
		want int
	}{
		{"birthday today", day(2000, time.June, 15), day(2025, time.June, 15), 25},
		{"day before birthday", day(2000, time.June, 15), day(2025, time.June, 14), 24},
		// March 1 birthday evaluated on March 1 of a year following a leap
		// year; day-of-year arithmetic is off by one here.
		{"march birthday after leap day", day(2004, time.March, 1), day(2025, time.March, 1), 21},
		{"leap-day birth on leap day", day(2000, time.February, 29), day(2024, time.February, 29), 24},
		{"leap-day birth in common year", day(2000, time.February, 29), day(2023, time.February, 28), 22},
		{"born this year", day(2025, time.January, 2), day(2025, time.December, 31), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ageAt(tc.dob, tc.now))
		})
	}
}
