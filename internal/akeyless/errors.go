package akeyless

import (
	"encoding/json"
	"fmt"
	"strings"
)

// unknownErrorMessage is used when neither the vendor nor the transport
// produced any usable text.
const unknownErrorMessage = "Unknown error occurred"

// ValidationError reports a missing or invalid parameter or credential field.
// It is raised before anything is sent over the wire.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + " " + e.Message
	}
	return e.Message
}

// AuthError reports a failed token acquisition.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	return "Akeyless authentication failed: " + e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RemoteError reports a non-2xx response or a transport failure during an
// operation call.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("akeyless %s error (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("akeyless %s error: %s", e.Endpoint, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// vendorMessage picks the most specific message available: the vendor's
// "error" field, then its "message" field, then fallback.
func vendorMessage(body []byte, fallback string) string {
	var payload map[string]interface{}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"error", "message"} {
			if msg := stringField(payload, key); msg != "" {
				return msg
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return unknownErrorMessage
}

func stringField(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		// Some gateway versions nest the error object.
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
