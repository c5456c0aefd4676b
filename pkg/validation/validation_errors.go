package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to user-friendly labels
var FieldLabels = map[string]string{
	// Identity
	"email":            "Email",
	"password":         "Password",
	"password_confirm": "Password confirmation",
	"current_password": "Current password",
	"new_password":     "New password",
	"name":             "Name",

	// Post
	"title":       "Title",
	"description": "Description",

	// Personal information
	"nid_number":                "NID number",
	"blood_group":               "Blood group",
	"marital_status":            "Marital status",
	"religion":                  "Religion",
	"sex":                       "Sex",
	"email_address":             "Contact email",
	"phone_number":              "Phone number",
	"date_of_birth":             "Date of birth",
	"upload_certificate":        "Certificate",
	"academic_qualification_id": "Academic qualification",

	// Address
	"local_address":      "Local address",
	"division":           "Division",
	"district":           "District",
	"upazilla":           "Upazilla",
	"post_office":        "Post office",
	"postal_code":        "Postal code",
	"years_at_residence": "Years at residence",

	// Passport
	"passport_number": "Passport number",
	"issue_date":      "Issue date",
	"expiry_date":     "Expiry date",
	"issue_place":     "Issue place",

	// Work
	"job_category":        "Job category",
	"skill_level":         "Skill level",
	"preferred_country":   "Preferred country",
	"years_of_experience": "Years of experience",
	"company_name":        "Company name",
	"designation":         "Designation",
	"country":             "Country",
	"from_year":           "From year",
	"to_year":             "To year",

	// Family
	"father_name":             "Father's name",
	"mother_name":             "Mother's name",
	"spouse_name":             "Spouse's name",
	"number_of_children":      "Number of children",
	"emergency_contact_name":  "Emergency contact name",
	"emergency_contact_phone": "Emergency contact phone",

	// BOESL
	"registration_number": "Registration number",
	"registration_date":   "Registration date",
	"training_center":     "Training center",
	"certificate_number":  "Certificate number",
	"valid_until":         "Valid until",
}

// FieldErrors converts validator errors into a map keyed by the dotted json
// path of the offending field (e.g. "present_address.postal_code").
// Returns nil when err is not a validator.ValidationErrors.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		key := fieldPath(e.Namespace())
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = formatSingleError(e)
	}
	return fields
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", label, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)
	case "eqfield":
		return fmt.Sprintf("%s does not match", label)
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", label, getFieldLabel(param))
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", label, getFieldLabel(param))
	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and . ' -", label)
	case "valid_phone":
		return fmt.Sprintf("%s must be 7 to 15 digits, optionally prefixed with +", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji", label)
	case "max_current_year":
		return fmt.Sprintf("%s cannot be in the future", label)
	case "postal_code_5":
		return fmt.Sprintf("%s must be exactly 5 digits", label)
	case "iso_date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", label)
	case "past_date":
		return fmt.Sprintf("%s must be in the past", label)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return strings.ReplaceAll(field, "_", " ")
}
