// Package validator registers the custom validation rules shared by the
// period store and Gin's binding engine.
package validator

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"wisespend/internal/period"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the validator used for bucket documents.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		configure(validate)
	})
	return validate
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return Get().Struct(s)
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

func configure(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("period_id", validatePeriodID)
	_ = v.RegisterValidation("bucket_kind", validateBucketKind)
	_ = v.RegisterValidation("switch_intent", validateSwitchIntent)
}

// decimalValue lets numeric tags such as gte=0 apply to decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func validatePeriodID(fl validator.FieldLevel) bool {
	_, err := period.Parse(fl.Field().String())
	return err == nil
}

func validateBucketKind(fl validator.FieldLevel) bool {
	_, err := period.ParseKind(fl.Field().String())
	return err == nil
}

func validateSwitchIntent(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "view", "edit":
		return true
	}
	return false
}
