package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/modernforum/forum/internal/core/domain"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors follow the form tag.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// ValidationErrors is returned by Validate; one entry per rejected field.
type ValidationErrors []domain.FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Msg)
	}
	return strings.Join(msgs, "; ")
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(ValidationErrors, 0, len(ve))
			for _, fe := range ve {
				out = append(out, domain.FieldError{Field: fe.Field(), Msg: fieldError(fe)})
			}
			return out
		}
		return err
	}
	return nil
}

// fieldError converts a single FieldError into the message shown to users.
func fieldError(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "username.min", "username.max":
		return fmt.Sprintf("Username must be %d-%d chars", domain.UsernameMinLen, domain.UsernameMaxLen)
	case "username.username":
		return "Only letters, numbers, underscore"
	case "password.min":
		return fmt.Sprintf("Password must be at least %d chars", domain.PasswordMinLen)
	case "title.required", "title.min", "title.max":
		return fmt.Sprintf("Title must be %d-%d chars", domain.TitleMinLen, domain.TitleMaxLen)
	case "tags.max":
		return "Tags too long"
	case "content.required", "content.max":
		return "Post cannot be empty"
	}

	field := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s chars", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s chars", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
