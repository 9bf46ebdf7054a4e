package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type enum interface {
	IsValid() bool
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	// enum fields carry their own set of allowed values
	validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		v, ok := fl.Field().Interface().(enum)
		return ok && v.IsValid()
	})
}

// Validate runs struct-tag validation for any model record
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
