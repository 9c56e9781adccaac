package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	TagTimeOfDay      = "hhmm"
	TagPositiveAmount = "decimal_gt0"
	TagAmount         = "decimal_gte0"
)

var registerOnce sync.Once

// Register installs the custom binding validators on gin's validator engine.
// Decimal fields are validated through their string form.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("validation: unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		err = Configure(v)
	})
	return err
}

// Configure registers the custom tags on v
func Configure(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation(TagTimeOfDay, timeOfDay); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagPositiveAmount, positiveAmount); err != nil {
		return err
	}
	return v.RegisterValidation(TagAmount, amount)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// jsonFieldName reports fields by their json name
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func timeOfDay(fl validator.FieldLevel) bool {
	_, err := entity.ParseTimeOfDay(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func positiveAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func amount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

// Message turns a failed tag into a readable message
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case "uuid":
		return fe.Field() + " must be a valid UUID"
	case TagTimeOfDay:
		return "Invalid time format. Use HH:mm"
	case TagPositiveAmount:
		return fe.Field() + " must be greater than zero"
	case TagAmount:
		return fe.Field() + " cannot be negative"
	}
	return fe.Field() + " is invalid"
}
