package akeyless

import (
	"fmt"
	"strings"

	"github.com/systmms/akops/internal/logging"
)

// DefaultBaseURL is the public Akeyless API endpoint.
const DefaultBaseURL = "https://api.akeyless.io"

// AuthMethod selects how a Credential obtains a token.
type AuthMethod string

const (
	AuthMethodAccessKey AuthMethod = "access_key"
	AuthMethodToken     AuthMethod = "token"
)

// ParseAuthMethod accepts both the config spelling ("access_key") and the
// node spelling ("accessKey"). An empty value means access key.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "access_key", "accesskey":
		return AuthMethodAccessKey, nil
	case "token":
		return AuthMethodToken, nil
	default:
		return "", &ValidationError{Field: "authMethod", Message: fmt.Sprintf("unsupported authentication method %q", s)}
	}
}

// Credential holds everything needed to reach and authenticate against one
// Akeyless endpoint. It is built once per execution and never mutated.
type Credential struct {
	BaseURL          string
	AuthMethod       AuthMethod
	AccessID         string
	AccessKey        logging.Secret
	Token            logging.Secret
	AllowInsecureTLS bool

	// CACert is an optional PEM bundle path for private gateways.
	CACert string
}

// URL returns the base URL with the default applied and any trailing slash removed.
func (c Credential) URL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		u = DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

// Transport returns the TLS settings this credential asks for.
func (c Credential) Transport() TransportConfig {
	return TransportConfig{
		InsecureSkipVerify: c.AllowInsecureTLS,
		CACert:             c.CACert,
	}
}

// Validate checks the auth-method invariants without touching the network.
func (c Credential) Validate() error {
	if c.Token != "" {
		return nil
	}
	if c.AuthMethod == AuthMethodToken {
		return &ValidationError{Field: "token", Message: "is required when using token authentication"}
	}
	if strings.TrimSpace(c.AccessID) == "" || strings.TrimSpace(string(c.AccessKey)) == "" {
		return &ValidationError{Message: "Access ID and Access Key are required when not using token authentication"}
	}
	return nil
}
