package validator

import (
	"errors"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

// FieldError is one failed rule, reported by the field's json name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required": "Field is required",
	"email":    "Invalid email format",
	"min":      "Value is too short",
	"max":      "Value is too long",
	"uuid":     "Invalid identifier",
	"oneof":    "Value is not allowed",
	"hhmm":     "Time must be in HH:MM format",
	"datekey":  "Date must be in YYYY-MM-DD format",
	"weekday":  "Unknown weekday",
}

var custom = map[string]playground.Func{
	"hhmm": func(fl playground.FieldLevel) bool {
		return scheduling.IsValidTime(fl.Field().String())
	},
	"datekey": func(fl playground.FieldLevel) bool {
		_, err := scheduling.ParseDateKey(fl.Field().String())
		return err == nil
	},
	"weekday": func(fl playground.FieldLevel) bool {
		_, err := scheduling.ParseWeekday(fl.Field().String())
		return err == nil
	},
}

// Register adds the scheduling tags to v and makes errors report json names.
func Register(v *playground.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// New returns a validator that reads gin's binding tags.
func New() *playground.Validate {
	v := playground.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Translate flattens validation errors. ok is false when err is not one.
func Translate(err error) (fields []FieldError, ok bool) {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	for _, e := range verrs {
		msg, found := messages[e.Tag()]
		if !found {
			msg = e.Error()
		}
		fields = append(fields, FieldError{Field: e.Field(), Message: msg})
	}
	return fields, true
}
