package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/akops/internal/akeyless"
	"github.com/systmms/akops/internal/errors"
	"github.com/systmms/akops/internal/logging"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
	assert.Contains(t, errMsg, "💡")
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	err := errors.UserError{Err: fmt.Errorf("root cause")}
	assert.Equal(t, "root cause", err.Error())
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "profiles.default.url",
		Value:      "not-a-url",
		Message:    "Invalid URL format",
		Suggestion: "Use format: https://hostname",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "profiles.default.url")
	assert.Contains(t, errMsg, "not-a-url")
	assert.Contains(t, errMsg, "Invalid URL format")
	assert.Contains(t, errMsg, "https://hostname")
}

func TestVendorErrorSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		suggestion string
	}{
		{
			name:       "missing_credentials",
			err:        &akeyless.ValidationError{Message: "Access ID and Access Key are required when not using token authentication"},
			suggestion: "akops login",
		},
		{
			name: "missing_credentials_at_authentication",
			err: &akeyless.AuthError{
				Message: "Access ID and Access Key are required when not using token authentication",
				Err:     &akeyless.ValidationError{Message: "Access ID and Access Key are required when not using token authentication"},
			},
			suggestion: "akops login",
		},
		{
			name:       "unknown_operation",
			err:        &akeyless.ValidationError{Message: "unknown operation: nope"},
			suggestion: "getStaticSecret",
		},
		{
			name:       "missing_token_in_response",
			err:        &akeyless.AuthError{Message: "Failed to obtain token from Akeyless authentication. Response keys: status"},
			suggestion: "API endpoint",
		},
		{
			name:       "bad_access_key",
			err:        &akeyless.AuthError{StatusCode: 401, Message: "access denied"},
			suggestion: "akops doctor",
		},
		{
			name:       "not_found",
			err:        &akeyless.RemoteError{Endpoint: "/get-secret-value", StatusCode: 404, Message: "item not found"},
			suggestion: "items list",
		},
		{
			name:       "forbidden",
			err:        &akeyless.RemoteError{Endpoint: "/create-secret", StatusCode: 403, Message: "denied"},
			suggestion: "access role",
		},
		{
			name:       "timeout",
			err:        &akeyless.RemoteError{Endpoint: "/folder-create", Message: "request timed out", Err: context.DeadlineExceeded},
			suggestion: "--timeout",
		},
		{
			name:       "tls",
			err:        &akeyless.RemoteError{Endpoint: "/auth", Message: "x509: certificate signed by unknown authority"},
			suggestion: "ca_cert",
		},
		{
			name:       "connection_refused",
			err:        &akeyless.AuthError{Message: "dial tcp 127.0.0.1:1: connect: connection refused"},
			suggestion: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.VendorError("getStaticSecret", tt.err)

			var userErr errors.UserError
			require.ErrorAs(t, err, &userErr)
			assert.Contains(t, userErr.Suggestion, tt.suggestion)
			assert.True(t, stderrors.Is(err, tt.err))
		})
	}
}

func TestVendorErrorNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, errors.VendorError("x", nil))
}

func TestSimplifyError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.SimplifyError(nil))

	userErr := errors.UserError{Message: "already friendly"}
	assert.Equal(t, userErr, errors.SimplifyError(userErr))

	_, statErr := os.Open("/definitely/not/here")
	simplified := errors.SimplifyError(fmt.Errorf("load: %w", statErr))
	assert.Contains(t, simplified.Error(), "File or directory not found")

	yamlErr := errors.SimplifyError(fmt.Errorf("yaml: line 3: did not find expected key"))
	var cfgErr errors.ConfigError
	require.ErrorAs(t, yamlErr, &cfgErr)
	assert.Equal(t, "Invalid YAML format", cfgErr.Message)

	plain := fmt.Errorf("something else")
	assert.Equal(t, plain, errors.SimplifyError(plain))
}

func TestErrorDoesNotLeakSecretsInWrappedChain(t *testing.T) {
	t.Parallel()

	secretValue := "access-key-super-secret-123"
	baseErr := fmt.Errorf("authentication failed with key: %s", logging.Secret(secretValue))

	err := errors.VendorError("auth", baseErr)
	assert.NotContains(t, err.Error(), secretValue)
	assert.Contains(t, err.Error(), "[REDACTED]")
}
