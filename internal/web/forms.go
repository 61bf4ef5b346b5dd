package web

import (
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/ajg/form"
	"github.com/go-playground/validator/v10"

	dErrors "pawhub/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

// decodeForm parses the posted form into dst. Only keys in allowed are
// decoded and blank values are skipped, so dst keeps what it already held
// for anything not submitted.
func decodeForm(r *http.Request, dst any, allowed ...string) (url.Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "The form could not be read.")
	}
	vals := url.Values{}
	for _, key := range allowed {
		if v := strings.TrimSpace(r.PostForm.Get(key)); v != "" {
			vals.Set(key, v)
		}
	}
	if err := newFormDecoder().DecodeValues(dst, vals); err != nil {
		return r.PostForm, dErrors.Wrap(err, dErrors.CodeValidation, "Please check the highlighted fields.")
	}
	return r.PostForm, nil
}

func newFormDecoder() *form.Decoder {
	dec := form.NewDecoder(nil)
	dec.IgnoreUnknownKeys(true)
	return dec
}

// validateForm runs struct validation and renders one message per field.
func validateForm(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": "Please check the form and try again."}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	case "eqfield":
		return "Does not match."
	case "datetime":
		if fe.Param() == "15:04" {
			return "Please enter a time as HH:MM."
		}
		return "Please enter a date as YYYY-MM-DD."
	case "gte", "lte", "gt":
		return "Please enter a value in range."
	case "oneof":
		return "Please choose one of the listed options."
	default:
		return "This value is not valid."
	}
}

// safeNext accepts only same-site absolute paths and falls back otherwise.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
