package attendees

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftcheck/backend/pkg/response"
)

// RegisterRequest is the body for POST /attendees.
type RegisterRequest struct {
	Name            string  `json:"name" binding:"required,min=2"`
	Email           string  `json:"email" binding:"required,email"`
	PhoneNumber     *string `json:"phone_number,omitempty" binding:"omitempty,e164"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	ProfileImageURI *string `json:"profile_image_uri,omitempty" binding:"omitempty,url"`
}

const dateOfBirthLayout = "2006-01-02"

// Handler handles attendee HTTP endpoints.
type Handler struct {
	svc    *Service
	minAge int
	maxAge int
	logger *zap.Logger
}

// NewHandler creates an attendees handler. minAge/maxAge bound the admissible
// age derived from an optional date of birth.
func NewHandler(svc *Service, minAge, maxAge int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, minAge: minAge, maxAge: maxAge, logger: logger}
}

// Register handles POST /attendees. Creates the attendee and returns the
// record with its QR code value.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var dob *time.Time
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		parsed, err := time.Parse(dateOfBirthLayout, *req.DateOfBirth)
		if err != nil {
			response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
			return
		}
		if err := h.checkAge(parsed); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		dob = &parsed
	}

	att, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		DateOfBirth:     dob,
		ProfileImageURI: req.ProfileImageURI,
	})
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			response.Conflict(c, "registration capacity reached")
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		response.Internal(c, "failed to register attendee")
		return
	}
	response.Created(c, att)
}

// GetByID handles GET /attendees/:id. Reads from the live view, not the
// store; a just-created record may 404 until the next snapshot lands.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	att, err := h.svc.View().Lookup(id)
	if err != nil {
		response.NotFound(c, "attendee not found")
		return
	}
	response.OK(c, att)
}

// CheckIn handles POST /attendees/:id/checkin. Idempotent: a second call
// returns the already-checked-in record with its original check-in time.
func (h *Handler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	att, err := h.svc.CheckIn(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "attendee not found")
			return
		}
		h.logger.Error("check-in failed", zap.Error(err), zap.String("attendee_id", id.String()))
		response.Internal(c, "failed to check in attendee")
		return
	}
	response.OK(c, att)
}

// List handles GET /admin/attendees.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list attendees failed", zap.Error(err))
		response.Internal(c, "failed to list attendees")
		return
	}
	response.OK(c, list)
}

// GetStats handles GET /admin/stats.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		response.Internal(c, "failed to compute stats")
		return
	}
	response.OK(c, stats)
}

// ExportCSV handles GET /admin/attendees/export and streams the CSV export.
func (h *Handler) ExportCSV(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		response.Internal(c, "failed to export attendees")
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+CSVFilename+`"`)
	c.Status(http.StatusOK)
	if err := WriteCSV(c.Writer, list); err != nil {
		h.logger.Error("write csv failed", zap.Error(err))
	}
}

func (h *Handler) checkAge(dob time.Time) error {
	now := time.Now()
	if dob.After(now) {
		return fmt.Errorf("date_of_birth is in the future")
	}
	age := ageAt(dob, now)
	if age < h.minAge || age > h.maxAge {
		return fmt.Errorf("age must be between %d and %d", h.minAge, h.maxAge)
	}
	return nil
}

// ageAt returns completed years between dob and now. AddDate keeps the
// comparison calendar-exact across leap years, where day-of-year arithmetic
// shifts by one.
func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if age > 0 && dob.AddDate(age, 0, 0).After(now) {
		age--
	}
	return age
}
