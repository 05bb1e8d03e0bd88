package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	readingdomain "github.com/kvartplata/kvartplata/internal/meterreading/domain"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
	sessiondomain "github.com/kvartplata/kvartplata/internal/session/domain"
	tariffdomain "github.com/kvartplata/kvartplata/internal/tariff/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware maps domain errors to HTTP statuses after the
// handler chain. User-facing messages never expose storage details.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, sessiondomain.ErrInvalidSession):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, utility.ErrUnknownType),
		errors.Is(err, billingdomain.ErrInvalidAmount),
		errors.Is(err, billingdomain.ErrAmountExceedsDebt),
		errors.Is(err, billingdomain.ErrInvalidPeriod),
		errors.Is(err, billingdomain.ErrMissingReading),
		errors.Is(err, billingdomain.ErrNegativeUsage),
		errors.Is(err, billingdomain.ErrNoTariff),
		errors.Is(err, tariffdomain.ErrInvalidRate),
		errors.Is(err, tariffdomain.ErrInvalidUtility),
		errors.Is(err, tariffdomain.ErrInvalidValidFrom),
		errors.Is(err, readingdomain.ErrInvalidReading),
		errors.Is(err, readingdomain.ErrReadingDecreased),
		errors.Is(err, residentdomain.ErrInvalidTelegramID),
		errors.Is(err, residentdomain.ErrInvalidFullName):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, billingdomain.ErrDuplicateCharge),
		errors.Is(err, readingdomain.ErrDuplicateReading),
		errors.Is(err, residentdomain.ErrAlreadyResident):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, residentdomain.ErrNotFound),
		errors.Is(err, tariffdomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrChargeNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
