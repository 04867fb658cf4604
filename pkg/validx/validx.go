// Package validx validates request payloads at the HTTP boundary.
package validx

import (
	"reflect"
	"strings"
	"sync"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return errx.Wrap(err, "validation failed", errx.TypeValidation)
	}

	fields := make([]FieldError, 0, len(ves))
	messages := make([]string, 0, len(ves))
	for _, fe := range ves {
		msg := describe(fe)
		fields = append(fields, FieldError{Field: fe.Field(), Message: msg})
		messages = append(messages, fe.Field()+" "+msg)
	}

	return errx.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}

// Bind parses the JSON body into dst and validates it.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	return Struct(dst)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "is invalid"
	}
}
