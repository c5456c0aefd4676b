package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the only accepted calendar date format on input payloads
const DateLayout = "2006-01-02"

var (
	// Letters, spaces and the punctuation that shows up in Bangladeshi names: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)

	// Optional +, 7-15 digits (01XXXXXXXXX or +8801XXXXXXXXX)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// New returns a validator with the custom tags registered and field names
// reported by their json tag, so error keys match the request payload.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("max_current_year", MaxCurrentYear)
	_ = v.RegisterValidation("postal_code_5", PostalCode5)
	_ = v.RegisterValidation("iso_date", ISODate)
	_ = v.RegisterValidation("past_date", PastDate)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// Supplementary planes are mostly emoji/symbols
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// MaxCurrentYear validates that an integer field (year) does not exceed the current year
func MaxCurrentYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	if year == 0 {
		return true
	}
	return year <= int64(time.Now().Year())
}

// PostalCode5 accepts exactly five ASCII digits
func PostalCode5(fl validator.FieldLevel) bool {
	return IsPostalCode5(fl.Field().String())
}

// IsPostalCode5 reports whether s is exactly five ASCII digits.
// unicode.IsDigit is deliberately not used: Bengali digits must be rejected.
func IsPostalCode5(s string) bool {
	if len(s) != 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ISODate validates a YYYY-MM-DD calendar date; empty is left to `required`
func ISODate(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := time.Parse(DateLayout, val)
	return err == nil
}

// PastDate validates a YYYY-MM-DD date strictly before today (UTC)
func PastDate(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	d, err := time.Parse(DateLayout, val)
	if err != nil {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return d.Before(today)
}
