// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"spartan_estimator/platform/phone"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the shared custom tags registered:
//
//	trimmin=N    string has at least N characters after trimming whitespace
//	phonedigits  string holds 10-15 digits once non-digits are removed
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("trimmin", trimMin)
	_ = v.RegisterValidation("phonedigits", phoneDigits)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// FirstFailedField returns the struct field name of the first failed rule,
// in declaration order. ok is false for errors that are not validation errors.
func FirstFailedField(err error) (field string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}
	return verrs[0].StructField(), true
}

func trimMin(fl validator.FieldLevel) bool {
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
}

func phoneDigits(fl validator.FieldLevel) bool {
	return phone.ValidDigits(fl.Field().String())
}
