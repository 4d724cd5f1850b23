package validationutils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var TagNameFunction = func(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	}
	if name == "-" {
		return ""
	}
	return name
}

// New returns a validator reporting field paths with their yaml names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(TagNameFunction)
	return v
}
