package utils

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"counseling-app-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	// DateLayout is the ISO calendar day format used for appointment dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24h HH:MM format used for slot times.
	TimeLayout = "15:04"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClockTime(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := WeekdayIndex(fl.Field().String())
		return ok
	})
	v.RegisterStructValidation(validateAvailabilitySlot, models.AvailabilitySlot{})
	return v
}

// validateAvailabilitySlot rejects windows that do not end after they start.
// Malformed times are left to the hhmm rule.
func validateAvailabilitySlot(sl validator.StructLevel) {
	slot := sl.Current().Interface().(models.AvailabilitySlot)
	if !IsClockTime(slot.StartTime) || !IsClockTime(slot.EndTime) {
		return
	}
	if slot.EndTime <= slot.StartTime {
		sl.ReportError(slot.EndTime, "endTime", "EndTime", "after_start", "")
	}
}

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// IsClockTime reports whether s is a zero-padded 24h HH:MM time.
func IsClockTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// WeekdayIndex maps a lowercase weekday name to its time.Weekday.
func WeekdayIndex(name string) (time.Weekday, bool) {
	for i, day := range models.Weekdays {
		if day == name {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var errorMessages []string
		for _, e := range errs {
			errorMessages = append(errorMessages, describeFieldError(e))
		}
		return strings.Join(errorMessages, ", ")
	}
	return err.Error()
}

func describeFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format", e.Field())
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", e.Field())
	case "weekday":
		return fmt.Sprintf("%s must be a lowercase day of the week", e.Field())
	case "after_start":
		return fmt.Sprintf("%s must be after startTime", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	}
	return fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag())
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if err := Validate(obj); err != nil {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return false
	}
	return true
}
