package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	customerdomain "github.com/suryashakti/partner-crm/internal/customer/domain"
	incentivedomain "github.com/suryashakti/partner-crm/internal/incentive/domain"
	journeydomain "github.com/suryashakti/partner-crm/internal/journey/domain"
	vendordomain "github.com/suryashakti/partner-crm/internal/vendors/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

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
		c.Header("Content-Type", "application/json")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, journeydomain.ErrAlreadyCompleted),
		errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "milestone already completed",
		}
	case errors.Is(err, journeydomain.ErrOutOfOrder):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "out_of_order",
			Message: "an earlier milestone is still pending",
		}
	case errors.Is(err, vendordomain.ErrAssignmentFailed):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "vendor_assignment_failed",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidState),
		errors.Is(err, customerdomain.ErrInvalidPanelType),
		errors.Is(err, customerdomain.ErrInvalidCapacity),
		errors.Is(err, customerdomain.ErrInvalidPartner),
		errors.Is(err, customerdomain.ErrInvalidID):
		return true
	case errors.Is(err, commissiondomain.ErrInvalidPartner),
		errors.Is(err, commissiondomain.ErrInvalidPartnerType),
		errors.Is(err, commissiondomain.ErrInvalidPanelType),
		errors.Is(err, commissiondomain.ErrInvalidCapacity),
		errors.Is(err, commissiondomain.ErrInvalidUnits),
		errors.Is(err, commissiondomain.ErrInvalidAmount):
		return true
	case errors.Is(err, vendordomain.ErrInvalidCustomer),
		errors.Is(err, vendordomain.ErrInvalidVendor),
		errors.Is(err, vendordomain.ErrInvalidJobRole):
		return true
	case errors.Is(err, journeydomain.ErrInvalidCustomer),
		errors.Is(err, incentivedomain.ErrInvalidPartner):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, journeydomain.ErrNotFound),
		errors.Is(err, vendordomain.ErrVendorNotFound),
		errors.Is(err, incentivedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

// classifyErrorForLog feeds the request logger's error fields without
// re-running the response mapping.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= 500 {
		return "internal_error", payload.Type
	}
	return payload.Type, payload.Type
}
