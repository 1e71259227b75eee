package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/akops/internal/akeyless"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// VendorError enhances an Akeyless error with a suggestion for the user.
// The wrapped error stays reachable through errors.As.
func VendorError(operation string, err error) error {
	if err == nil {
		return nil
	}

	return UserError{
		Message:    fmt.Sprintf("akeyless %s failed: %v", operation, err),
		Suggestion: vendorSuggestion(err),
		Err:        err,
	}
}

// vendorSuggestion returns helpful suggestions based on the error kind and text
func vendorSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	var vErr *akeyless.ValidationError
	if errors.As(err, &vErr) {
		if strings.Contains(errStr, "access id") || strings.Contains(errStr, "token") {
			return "Set access_id and access_key (or token) in akops.yaml, the AKEYLESS_* environment variables, or run 'akops login'"
		}
		if strings.Contains(errStr, "unknown operation") {
			return fmt.Sprintf("Supported operations: %s", strings.Join(akeyless.Kinds(), ", "))
		}
		return "Check the operation parameters"
	}

	if strings.Contains(errStr, "x509") || strings.Contains(errStr, "certificate") {
		return "The gateway certificate is not trusted. Set ca_cert to its CA bundle, or allow_insecure_tls: true for a test gateway"
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(errStr, "timed out") || strings.Contains(errStr, "timeout") {
		return "The request timed out. Increase --timeout or check connectivity to the gateway"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check the url in your profile"
	}

	var authErr *akeyless.AuthError
	if errors.As(err, &authErr) {
		if strings.Contains(errStr, "response keys") {
			return "The gateway answered without a token. Check that url points at the API endpoint (e.g. https://api.akeyless.io)"
		}
		return "Verify the access ID and access key, or run 'akops doctor'"
	}

	var rErr *akeyless.RemoteError
	if errors.As(err, &rErr) {
		switch rErr.StatusCode {
		case 401:
			return "The token was rejected. Check the credential or its expiry"
		case 403:
			return "The access role does not permit this operation on the item"
		case 404:
			return "Verify the item name. List items with 'akops items list <path>'"
		}
	}

	return ""
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
