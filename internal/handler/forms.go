package handler

import (
	"errors"
	"reflect"
	"skillbridge/internal/view"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator reports field errors under the form field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldMessages maps "field.tag" or "field" to the text shown next to it.
type fieldMessages map[string]string

func validateForm(v *validator.Validate, form any, messages fieldMessages) view.FormErrors {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return view.FormErrors{"": err.Error()}
	}

	out := make(view.FormErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		switch msg, ok := messages[field+"."+fe.Tag()]; {
		case ok:
			out[field] = msg
		case messages[field] != "":
			out[field] = messages[field]
		default:
			out[field] = "Invalid value"
		}
	}
	return out
}

// optionalFloat parses a form number. Blank means "not sent".
func optionalFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func optionalInt(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
