package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var jobTypes = map[string]bool{
	"full-time":  true,
	"part-time":  true,
	"contract":   true,
	"internship": true,
	"freelance":  true,
	"temporary":  true,
}

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_role", ValidRole)
	_ = v.RegisterValidation("job_type", JobType)
}

// ValidRole accepts exactly the two session roles
func ValidRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "candidate", "recruiter":
		return true
	}
	return false
}

// JobType validates a job type, ignoring case and underscores
func JobType(fl validator.FieldLevel) bool {
	val := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	if val == "" {
		return true
	}
	return jobTypes[strings.ReplaceAll(val, "_", "-")]
}
