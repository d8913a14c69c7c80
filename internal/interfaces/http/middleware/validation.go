package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gescom/backend/internal/domain/billing"
)

// SetupValidator registers custom validations with gin's binding validator.
// Call once during startup, before the engine serves requests.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// taxrate validates that an int field is one of the allowed TVA rates
	_ = v.RegisterValidation("taxrate", func(fl validator.FieldLevel) bool {
		return billing.TaxRate(fl.Field().Int()).IsValid()
	})
}
