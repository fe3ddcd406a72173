package validators

import (
	"reflect"
	"strings"

	"gobarber/cmd/internal/schedule"

	"github.com/go-playground/validator/v10"
)

// Register installs the custom tags used by request structs and makes
// validation errors report json field names.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(jsonTagName)
	_ = validate.RegisterValidation("isodate", IsDate)
	_ = validate.RegisterValidation("yearmonth", IsYearMonth)
	_ = validate.RegisterValidation("localpath", IsLocalPath)
}

// IsDate accepts a calendar date in YYYY-MM-DD form.
func IsDate(fl validator.FieldLevel) bool {
	_, err := schedule.ParseDate(fl.Field().String())
	return err == nil
}

// IsYearMonth accepts a month in YYYY-MM form.
func IsYearMonth(fl validator.FieldLevel) bool {
	_, err := schedule.ParseYearMonth(fl.Field().String())
	return err == nil
}

// IsLocalPath accepts an empty value or a path on this host.
func IsLocalPath(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "" || (strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//"))
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
