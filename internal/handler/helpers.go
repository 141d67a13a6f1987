package handler

import (
	"errors"
	"net/http"
	"reflect"

	"pdvcore/internal/apierror"
	"pdvcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate is the query-string counterpart of bindAndValidate.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// operatorID extracts the acting operator from the X-Operator-ID header.
// Returns uuid.Nil and writes the error response when absent or malformed.
func operatorID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-Operator-ID")
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New("missing X-Operator-ID header"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid X-Operator-ID header"))
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the :id path parameter as a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unknown errors (including persistence failures) become opaque 500s; the
// ErrorHandler middleware logs the detail.
func respondServiceError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	var persistErr *service.PersistenceError

	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrRegisterNotFound),
		errors.Is(err, service.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrRegisterAlreadyOpen),
		errors.Is(err, service.ErrSaleAlreadyVoided),
		errors.Is(err, service.ErrDuplicateCode):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrRegisterNotOpen),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrInsufficientPayment):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.As(err, &persistErr):
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
