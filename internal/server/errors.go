package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	analyticsdomain "github.com/smallbiznis/eventory/internal/analytics/domain"
	assetdomain "github.com/smallbiznis/eventory/internal/asset/domain"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	authdomain "github.com/smallbiznis/eventory/internal/auth/domain"
	"github.com/smallbiznis/eventory/internal/authorization"
	branddomain "github.com/smallbiznis/eventory/internal/brand/domain"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
	invoicedomain "github.com/smallbiznis/eventory/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	pricingtierdomain "github.com/smallbiznis/eventory/internal/pricingtier/domain"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	warehousedomain "github.com/smallbiznis/eventory/internal/warehouse/domain"
	zonedomain "github.com/smallbiznis/eventory/internal/zone/domain"
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

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrPlatformRequired   = errors.New("X-Platform header is required")
	ErrServiceUnavailable = errors.New("service unavailable")
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
		c.AbortWithStatusJSON(status, payload)
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

// bindError turns a gin binding failure into field-level validation errors.
// Malformed bodies collapse to a single invalid_request entry.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}
	out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "uuid":
		return fe.Field() + " must be a valid id"
	case "email":
		return fe.Field() + " must be a valid email"
	case "iso2":
		return fe.Field() + " must be a two-letter ISO code"
	case "role":
		return fe.Field() + " must be one of ADMIN LOGISTICS CLIENT"
	case "order_status":
		return fe.Field() + " is not a known order status"
	case "sort_order":
		return fe.Field() + " must be asc or desc"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Message: "internal server error"}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorResponse{
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		return status, errorResponse{Message: "internal server error"}
	}
	return status, errorResponse{Message: err.Error()}
}

func statusFor(err error) int {
	switch {
	case isBadRequest(err):
		return http.StatusBadRequest
	case isUnauthorized(err):
		return http.StatusUnauthorized
	case isForbidden(err):
		return http.StatusForbidden
	case isNotFound(err):
		return http.StatusNotFound
	case isConflict(err):
		return http.StatusConflict
	case errors.Is(err, authdomain.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, assetdomain.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var badRequestErrors = []error{
	ErrInvalidRequest,
	ErrPlatformRequired,
	authorization.ErrInvalidObject,
	authorization.ErrInvalidAction,

	// a service reached without platform context
	platformdomain.ErrInvalidPlatform, authdomain.ErrInvalidPlatform, userdomain.ErrInvalidPlatform,
	countrydomain.ErrInvalidPlatform, citydomain.ErrInvalidPlatform, companydomain.ErrInvalidPlatform,
	branddomain.ErrInvalidPlatform, warehousedomain.ErrInvalidPlatform, zonedomain.ErrInvalidPlatform,
	pricingtierdomain.ErrInvalidPlatform, assetdomain.ErrInvalidPlatform, orderdomain.ErrInvalidPlatform,
	invoicedomain.ErrInvalidPlatform, auditdomain.ErrInvalidPlatform, analyticsdomain.ErrInvalidPlatform,
	notificationdomain.ErrInvalidPlatform,

	platformdomain.ErrInvalidName, platformdomain.ErrInvalidCurrency, platformdomain.ErrInvalidMargin,
	authdomain.ErrSamePassword, authdomain.ErrInvalidResetToken,
	userdomain.ErrInvalidID, userdomain.ErrInvalidName, userdomain.ErrInvalidEmail, userdomain.ErrInvalidRole,
	userdomain.ErrCompanyRequired, userdomain.ErrInvalidCompany,
	countrydomain.ErrInvalidID, countrydomain.ErrInvalidName, countrydomain.ErrInvalidISOCode,
	citydomain.ErrInvalidID, citydomain.ErrInvalidName, citydomain.ErrInvalidCountry, citydomain.ErrCityNotInCountry,
	companydomain.ErrInvalidID, companydomain.ErrInvalidName, companydomain.ErrInvalidMargin,
	branddomain.ErrInvalidID, branddomain.ErrInvalidName, branddomain.ErrInvalidCompany,
	warehousedomain.ErrInvalidID, warehousedomain.ErrInvalidName, warehousedomain.ErrInvalidCode, warehousedomain.ErrInvalidLocation,
	zonedomain.ErrInvalidID, zonedomain.ErrInvalidName, zonedomain.ErrInvalidWarehouse, zonedomain.ErrInvalidCompany,
	pricingtierdomain.ErrInvalidID, pricingtierdomain.ErrInvalidLocation, pricingtierdomain.ErrInvalidVolume,
	pricingtierdomain.ErrNegativeVolume, pricingtierdomain.ErrInvalidBasePrice, pricingtierdomain.ErrInvalidCurrency,
	assetdomain.ErrInvalidID, assetdomain.ErrInvalidName, assetdomain.ErrInvalidSKU, assetdomain.ErrInvalidCategory,
	assetdomain.ErrInvalidVolume, assetdomain.ErrInvalidWeight, assetdomain.ErrInvalidQuantity, assetdomain.ErrInvalidCondition,
	assetdomain.ErrInvalidCompany, assetdomain.ErrInvalidBrand, assetdomain.ErrInvalidWarehouse, assetdomain.ErrInvalidZone,
	assetdomain.ErrInvalidImage, assetdomain.ErrInvalidCollectionID, assetdomain.ErrInvalidCollectionName,
	assetdomain.ErrInvalidItems, assetdomain.ErrDuplicateItem,
	orderdomain.ErrInvalidID, orderdomain.ErrInvalidItemID, orderdomain.ErrInvalidCompany, orderdomain.ErrInvalidBrand,
	orderdomain.ErrInvalidEventName, orderdomain.ErrInvalidVenue, orderdomain.ErrInvalidEventDates, orderdomain.ErrInvalidAsset,
	orderdomain.ErrInvalidQuantity, orderdomain.ErrInvalidStatus, orderdomain.ErrEmptyOrder, orderdomain.ErrPriceRequired,
	orderdomain.ErrInvalidBasePrice,
	invoicedomain.ErrInvalidID, invoicedomain.ErrInvalidOrder, invoicedomain.ErrInvalidCompany, invoicedomain.ErrInvalidStatus,
	invoicedomain.ErrOrderNotPriced, invoicedomain.ErrInvalidPaidAt,
	auditdomain.ErrInvalidTimeRange, auditdomain.ErrInvalidAction,
	analyticsdomain.ErrInvalidRange, analyticsdomain.ErrInvalidDate, analyticsdomain.ErrInvalidGroupBy, analyticsdomain.ErrInvalidCompany,
	notificationdomain.ErrInvalidID, notificationdomain.ErrUnknownType,
}

var unauthorizedErrors = []error{
	ErrUnauthorized,
	authdomain.ErrInvalidCredentials,
	authdomain.ErrInvalidRefreshToken,
	authdomain.ErrUnauthenticated,
	authdomain.ErrWrongPassword,
	authorization.ErrInvalidActor,
	orderdomain.ErrUnauthenticated,
	notificationdomain.ErrUnauthenticated,
}

var forbiddenErrors = []error{
	ErrForbidden,
	authorization.ErrForbidden,
	authorization.ErrInvalidPlatform,
	authdomain.ErrInactiveUser,
	authdomain.ErrPlatformMismatch,
	companydomain.ErrForbidden,
	orderdomain.ErrForbidden,
	userdomain.ErrLastAdmin,
	userdomain.ErrSelfDeactivation,
}

var notFoundErrors = []error{
	ErrNotFound,
	gorm.ErrRecordNotFound,
	platformdomain.ErrNotFound,
	authdomain.ErrUserNotFound,
	userdomain.ErrNotFound,
	countrydomain.ErrNotFound,
	citydomain.ErrNotFound,
	companydomain.ErrNotFound,
	branddomain.ErrNotFound,
	warehousedomain.ErrNotFound,
	zonedomain.ErrNotFound,
	pricingtierdomain.ErrNotFound, pricingtierdomain.ErrNoMatchingTier,
	assetdomain.ErrNotFound, assetdomain.ErrCollectionNotFound,
	orderdomain.ErrNotFound, orderdomain.ErrItemNotFound,
	invoicedomain.ErrNotFound, invoicedomain.ErrOrderNotFound,
	notificationdomain.ErrNotFound,
}

var conflictErrors = []error{
	platformdomain.ErrSlugExists, platformdomain.ErrDomainExists,
	userdomain.ErrEmailExists,
	countrydomain.ErrISOCodeExists,
	citydomain.ErrNameExists,
	companydomain.ErrSlugExists,
	branddomain.ErrNameExists,
	warehousedomain.ErrCodeExists,
	zonedomain.ErrNameExists,
	pricingtierdomain.ErrTierOverlap, pricingtierdomain.ErrTierBusy,
	assetdomain.ErrSKUExists, assetdomain.ErrQuantityBelowReserved, assetdomain.ErrInsufficientStock,
	assetdomain.ErrCollectionExists,
	orderdomain.ErrItemExists, orderdomain.ErrInvalidTransition, orderdomain.ErrNotEditable,
	orderdomain.ErrConcurrentUpdate, orderdomain.ErrOrderNumberConflict,
	invoicedomain.ErrOrderNotInvoiceable, invoicedomain.ErrAlreadyInvoiced, invoicedomain.ErrNumberConflict,
	invoicedomain.ErrNotOpen,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isBadRequest(err error) bool {
	return isAny(err, badRequestErrors)
}

func isUnauthorized(err error) bool {
	return isAny(err, unauthorizedErrors)
}

func isForbidden(err error) bool {
	return isAny(err, forbiddenErrors)
}

func isNotFound(err error) bool {
	return isAny(err, notFoundErrors)
}

func isConflict(err error) bool {
	return isAny(err, conflictErrors)
}

// classifyErrorForLog feeds the request logger with a stable error type and
// code without leaking messages of unexpected errors.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if asValidationErrors(err) != nil {
		return "validation_error", "invalid_request"
	}
	status := statusFor(err)
	code := strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
	if status == http.StatusInternalServerError {
		return "internal_error", code
	}
	return "client_error", code
}
