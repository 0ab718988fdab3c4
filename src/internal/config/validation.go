package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/routeros"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/scheduler"
)

var countryCodeRegexp = regexp.MustCompile(`^[A-Z]{2}$`)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "hostname_rfc1123|ip":
		return "must be a valid IP address or host name"
	case "hostname_port":
		return "must be in format 'host:port'"
	case "country_alpha2":
		return "must be a two-letter ISO 3166-1 country code, e.g. RU"
	case "transport":
		return fmt.Sprintf("must be one of: %s, %s", TransportSSH, TransportNative)
	case "list_name", "directive_value":
		return `must not contain quotes, backslashes, "$" or control characters`
	case "cron_spec":
		return `must be a cron expression with seconds (e.g. "0 0 4 * * *") or a descriptor (e.g. "@every 6h")`
	case "file":
		return "file does not exist"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	FieldPath string // Dot-notation field path (e.g., "router.port")
	Message   string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("country_alpha2", validateCountryCode); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("transport", validateTransport); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("list_name", validateDirectiveValue); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("directive_value", validateDirectiveValue); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("cron_spec", validateCronSpec); err != nil {
		panic(err)
	}

	// Register function to get field name from "toml" tag
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateCountryCode(fl validator.FieldLevel) bool {
	return countryCodeRegexp.MatchString(fl.Field().String())
}

func validateTransport(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case TransportSSH, TransportNative:
		return true
	}
	return false
}

// Values rendered into RouterOS directives are not escaped, so they must be safe as-is.
func validateDirectiveValue(fl validator.FieldLevel) bool {
	return routeros.IsSafeValue(fl.Field().String())
}

func validateCronSpec(fl validator.FieldLevel) bool {
	return scheduler.ValidateSpec(fl.Field().String()) == nil
}
