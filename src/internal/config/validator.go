package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors.
//
// Router host and username may be empty here: they are prompted for later. Use
// ValidateTarget once they must be known.
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	sections := []struct {
		name  string
		value interface{}
	}{
		{"general", c.General},
		{"registry", c.Registry},
		{"router", c.Router},
		{"address_list", c.AddressList},
		{"service", c.Service},
		{"audit", c.Audit},
	}

	for _, section := range sections {
		if reflectNil(section.value) {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: section.name,
				Message:   fmt.Sprintf("configuration must contain '%s' section", section.name),
			})
			continue
		}
		if err := validate.Struct(section.value); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, section.name)...)
		}
	}

	if c.Router != nil && c.Router.IdentityFile != "" {
		if _, err := os.Stat(c.GetAbsolutePath(c.Router.IdentityFile)); errors.Is(err, os.ErrNotExist) {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "router.identity_file",
				Message:   fmt.Sprintf("file does not exist: %s", c.Router.IdentityFile),
			})
		}
	}

	if c.Audit != nil && c.Audit.GeoIPDB != "" {
		if _, err := os.Stat(c.GetAbsolutePath(c.Audit.GeoIPDB)); errors.Is(err, os.ErrNotExist) {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "audit.geoip_db",
				Message:   fmt.Sprintf("file does not exist: %s", c.Audit.GeoIPDB),
			})
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// ValidateTarget checks the fields needed to reach the device.
func (c *Config) ValidateTarget() error {
	var validationErrors ValidationErrors

	if c.Router.Host == "" {
		validationErrors = append(validationErrors, ValidationError{FieldPath: "router.host", Message: "field is required"})
	}
	if c.Router.Username == "" {
		validationErrors = append(validationErrors, ValidationError{FieldPath: "router.username", Message: "field is required"})
	}
	if err := validate.Struct(c.Router); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "router")...)
	}
	if err := validate.Struct(c.AddressList); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "address_list")...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func reflectNil(v interface{}) bool {
	switch s := v.(type) {
	case *GeneralConfig:
		return s == nil
	case *RegistryConfig:
		return s == nil
	case *RouterConfig:
		return s == nil
	case *AddressListConfig:
		return s == nil
	case *ServiceConfig:
		return s == nil
	case *AuditConfig:
		return s == nil
	}
	return v == nil
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			// e.Field() returns the TOML tag name because we registered TagNameFunc
			if e.Field() != "" {
				fieldPath = fieldPrefix + "." + e.Field()
			}

			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
