package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	// Report fields by the name operators set them with.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("envconfig"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	err := validate.RegisterValidation("port", func(fl val.FieldLevel) bool {
		return isPort(fl.Field().String())
	})

	if err != nil {
		panic(err)
	}
}

func isPort(value string) bool {
	if value == "" || len(value) > 5 {
		return false
	}

	port := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}

		port = port*10 + int(r-'0')
	}

	return port <= 65535
}

// ValidateStruct performs validation on the struct using the validator package.
// https://github.com/go-playground/validator
func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		return errors.New(message(err))
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		return errors.New(message(err))
	}

	return nil
}
