// Package validation wraps go-playground/validator for HTML form input.
//
// Field names come from the `form` tag. A field may carry a `label` tag used
// to build default messages ("First name must be specified") or a `msg` tag
// that replaces the message for every failing rule on that field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/listenupapp/locallibrary/internal/domain"
	domainerrors "github.com/listenupapp/locallibrary/internal/errors"
)

// FieldError is one human-readable problem with a submitted field.
type FieldError struct {
	Field   string `json:"param"`
	Message string `json:"msg"`
	Value   string `json:"value,omitempty"`
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the catalog's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("isodate", isoDate)
	_ = v.RegisterValidation("status", bookStatus)

	return &Validator{v: v}
}

// isoDate accepts an empty value or a calendar date in YYYY-MM-DD form,
// optionally followed by an RFC 3339 time.
func isoDate(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	if _, err := time.Parse(domain.FormDateLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// bookStatus accepts an empty value (the default applies) or a known status.
func bookStatus(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || domain.Status(s).IsValid()
}

// Validate checks s and returns a validation error whose details are a
// []FieldError in struct field order.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(s, err)
	}
	return nil
}

// Fields returns the field errors carried by err, or nil.
func Fields(err error) []FieldError {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return nil
	}
	fields, _ := domainErr.Details.([]FieldError)
	return fields
}

func (v *Validator) formatError(s any, err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		fe := FieldError{Field: e.Field(), Message: v.message(t, e)}
		if val, ok := e.Value().(string); ok {
			fe.Value = val
		}
		fields = append(fields, fe)
	}

	return domainerrors.ValidationWithDetails("validation failed", fields)
}

func (v *Validator) message(t reflect.Type, e validator.FieldError) string {
	label := e.Field()
	if sf, ok := t.FieldByName(e.StructField()); ok {
		if msg := sf.Tag.Get("msg"); msg != "" {
			return msg
		}
		if l := sf.Tag.Get("label"); l != "" {
			label = l
		}
	}
	return label + " " + friendlyMessage(e)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "must be specified"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "isodate":
		return "must be a valid date"
	case "status":
		return "must be one of: " + strings.Join(statusNames(), ", ")
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

func statusNames() []string {
	statuses := domain.Statuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
