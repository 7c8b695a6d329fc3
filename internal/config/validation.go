package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the configuration for values the controllers cannot run with.
// The namespace is not required here because the run command supplies it.
func (c Config) Validate() error {
	var errs ValidationErrors

	if c.ReconcileInterval <= 0 {
		errs.Add("reconcileInterval", "must be positive", c.ReconcileInterval)
	}
	if c.RetryInterval <= 0 {
		errs.Add("retryInterval", "must be positive", c.RetryInterval)
	}
	if c.MaxConcurrentReconciles < 0 {
		errs.Add("maxConcurrentReconciles", "must not be negative", c.MaxConcurrentReconciles)
	}
	if strings.TrimSpace(c.HTTPAddress) == "" {
		errs.Add("httpAddress", "is required")
	}

	for name, cc := range c.Controllers {
		prefix := "controllers." + name
		if cc.ReconcileInterval < 0 {
			errs.Add(prefix+".reconcileInterval", "must not be negative", cc.ReconcileInterval)
		}
		if cc.RetryInterval < 0 {
			errs.Add(prefix+".retryInterval", "must not be negative", cc.RetryInterval)
		}
		if cc.MaxConcurrentReconciles < 0 {
			errs.Add(prefix+".maxConcurrentReconciles", "must not be negative", cc.MaxConcurrentReconciles)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
