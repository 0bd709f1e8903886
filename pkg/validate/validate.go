// Package validate wraps go-playground/validator with the custom tags the
// Recyclify forms use and turns failures into per-field messages.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Named patterns available as struct tags.
var patterns = map[string]*regexp.Regexp{
	"letters":      regexp.MustCompile(`^[a-zA-Z\s]*$`),
	"name_letters": regexp.MustCompile(`^[a-zA-Z\s]+$`),
	"nospace":      regexp.MustCompile(`^\S*$`),
	"email_addr":   regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
	"email_strict": regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`),
	"phone8":       regexp.MustCompile(`^[0-9]{8}$`),
	"code6":        regexp.MustCompile(`^[0-9]{6}$`),
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with custom tags registered.
// Field names in errors come from the json tag.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", notBlank)
		for tag, re := range patterns {
			re := re
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return re.MatchString(fl.Field().String())
			})
		}
		instance = v
	})
	return instance
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Messages maps "field.tag" (or just "field") to the text shown for a failure.
type Messages map[string]string

func (m Messages) lookup(fe validator.FieldError) string {
	if msg, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := m[fe.Field()]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}

// Struct validates s and returns one message per failing field, or nil.
// Non-validation errors (a nil or non-struct value) are returned as err.
func Struct(s any, msgs Messages) (map[string]string, error) {
	err := Validator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = msgs.lookup(fe)
		}
	}
	return out, nil
}
