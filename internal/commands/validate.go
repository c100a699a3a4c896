package commands

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// enum is implemented by the string enumerations of this package.
type enum interface {
	valid() bool
	values() []string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report the protocol argument name instead of the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("arg"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		return ok && e.valid()
	}); err != nil {
		panic(err)
	}

	return v
}

// check validates args and converts the first failure into a required or
// invalid argument error for function.
func check(function string, args any) error {
	err := validate.Struct(args)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return gvmerrors.Wrap(gvmerrors.CodeValidation, "failed to validate "+function+" arguments", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "required_with", "required_without", "required_if":
		return gvmerrors.NewRequiredArgument(function, fe.Field())
	}

	invalid := gvmerrors.NewInvalidArgument(function, fe.Field(), fe.Value())
	switch fe.Tag() {
	case "enum":
		if e, ok := fe.Value().(enum); ok {
			invalid.Allowed = e.values()
		}
	case "oneof":
		invalid.Allowed = strings.Fields(fe.Param())
	}
	return invalid
}
