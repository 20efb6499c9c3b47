package validator

import (
	"github.com/go-playground/validator/v10"
)

// shared is safe for concurrent use and caches struct metadata
var shared = validator.New()

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	return &CustomValidator{v: shared}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// Struct validates i against its `validate` tags
func Struct(i interface{}) error {
	return shared.Struct(i)
}
