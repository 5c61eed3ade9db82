package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, keyed by the JSON name of the field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

var validate = validator.New()

func init() {
	// Report JSON field names instead of Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// notblank: required and not only whitespace
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(f.String()) != ""
	})
}

// ValidateStruct returns nil when data passes all rules.
func ValidateStruct(data interface{}) []*FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}

	var errors []*FieldError
	for _, fe := range verrs {
		errors = append(errors, &FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Param(),
			Message: message(fe),
		})
	}
	return errors
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		if fe.Kind() == reflect.Int || fe.Kind() == reflect.Ptr && fe.Type().Elem().Kind() == reflect.Int {
			return label + " must be a non-negative integer"
		}
		return label + " is required"
	case "min":
		if fe.Param() == "0" {
			return label + " must be a non-negative integer"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", label, fe.Tag())
	}
}

// humanize turns "created_at" into "Created at".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
