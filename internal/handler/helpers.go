package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
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
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
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

// respondError maps domain errors to HTTP statuses: business-rule batches to
// 422, lifecycle/concurrency conflicts to 409, lookups to 404, the rest 400.
func respondError(c *gin.Context, err error) {
	var verrs apierror.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, apierror.FromFieldErrors(verrs))
		return
	}
	var illegal *apierror.IllegalTransition
	if errors.As(err, &illegal) {
		c.JSON(http.StatusConflict, apierror.New(illegal.Error()))
		return
	}
	var inactive *apierror.ParentInactive
	if errors.As(err, &inactive) {
		c.JSON(http.StatusConflict, apierror.New(inactive.Error()))
		return
	}
	if errors.Is(err, apierror.ErrConflictoConcurrencia) || errors.Is(err, apierror.ErrStockInsuficiente) {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	if strings.Contains(err.Error(), "no encontrado") || strings.Contains(err.Error(), "no encontrada") {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
}
