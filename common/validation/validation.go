// Package validation configures the request validator used by gin binding
// and translates its failures into field-level API errors.
package validation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	apperrors "cakeshop/common/errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	zipCodeRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phoneRegex   = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

	registerOnce sync.Once
)

// Register installs the custom rules on gin's validator engine. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
			return zipCodeRegex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phoneRegex.MatchString(fl.Field().String())
		})
	})
}

// Struct validates obj against its binding tags.
func Struct(obj any) error {
	Register()
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return Error(err)
	}
	return nil
}

// Error converts a binding or validation failure into a Validation error.
func Error(err error) *apperrors.Error {
	return apperrors.Validation(FieldErrors(err))
}

// FieldErrors flattens err into per-field messages keyed by JSON path.
func FieldErrors(err error) []apperrors.FieldError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		out := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, apperrors.FieldError{
				Field:   fieldPath(fe),
				Message: message(fe),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return []apperrors.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type.String()),
		}}
	}

	return []apperrors.FieldError{{Field: "body", Message: "must be a valid JSON object"}}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "zipcode":
		return "must be a valid ZIP code"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "eqfield":
		return "must match " + lowerFirst(fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + unit(fe)
	case "max":
		return "must be at most " + fe.Param() + unit(fe)
	}
	return "is invalid"
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
