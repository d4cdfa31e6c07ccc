package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted by the sign-up and reset forms
const MinPasswordLength = 8

const (
	msgInvalidEmail    = "Invalid email address"
	msgPasswordLength  = "Password must be at least 8 characters"
	msgPasswordPolicy  = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	msgPasswordsDiffer = "Passwords don't match"
	msgResetCode       = "Reset code must be 6 digits"
	msgInvalidURL      = "Invalid URL"
)

// FieldErrors maps a JSON field name to a message shown next to that field
type FieldErrors map[string]string

// Validator runs the declarative form schemas
type Validator struct {
	validate *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns a process-wide validator; validator.Validate caches struct metadata
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New builds a validator with the password policy registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// registration only fails on an empty tag name
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return PasswordPolicy(fl.Field().String()) == ""
	})

	return &Validator{validate: v}
}

// PasswordPolicy returns the first rule the password breaks, or "" when it is acceptable
func PasswordPolicy(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return msgPasswordLength
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return msgPasswordPolicy
	}
	return ""
}

// Validate checks v against its schema tags. The result is empty when v is valid.
func (v *Validator) Validate(s interface{}) FieldErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return FieldErrors{}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "otp" {
			return msgResetCode
		}
		return humanize(fe.Field()) + " is required"
	case "email":
		return msgInvalidEmail
	case "password_policy":
		return PasswordPolicy(fe.Value().(string))
	case "eqfield":
		return msgPasswordsDiffer
	case "len", "numeric":
		if fe.Field() == "otp" {
			return msgResetCode
		}
		return fmt.Sprintf("%s must be %s characters", humanize(fe.Field()), fe.Param())
	case "min":
		if strings.Contains(strings.ToLower(fe.Field()), "password") {
			return "Password must be at least " + fe.Param() + " characters"
		}
		return fmt.Sprintf("%s must be at least %s characters", humanize(fe.Field()), fe.Param())
	case "url":
		return msgInvalidURL
	default:
		return humanize(fe.Field()) + " is invalid"
	}
}

// humanize turns "firstName" into "First name"
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether fe has no entries
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}
