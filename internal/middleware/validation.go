package middleware

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// idNumber accepts national identity numbers: digits only, 6 to 12 long
func idNumber(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 6 || len(value) > 12 {
		return false
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// RegisterValidations installs the custom binding validators and makes
// validation errors report JSON field names instead of Go field names.
// Call once at startup, before the engine serves requests.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	if err := v.RegisterValidation("idnumber", idNumber); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}
