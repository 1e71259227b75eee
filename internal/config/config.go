package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systmms/akops/internal/akeyless"
	akerrors "github.com/systmms/akops/internal/errors"
	"github.com/systmms/akops/internal/logging"
)

// DefaultProfile is used when neither --profile nor default_profile is set.
const DefaultProfile = "default"

// DefaultTimeoutMs bounds each Akeyless call unless a profile or record says otherwise.
const DefaultTimeoutMs = 30000

// Environment variables that override profile values.
const (
	EnvURL       = "AKEYLESS_URL"
	EnvAccessID  = "AKEYLESS_ACCESS_ID"
	EnvAccessKey = "AKEYLESS_ACCESS_KEY"
	EnvToken     = "AKEYLESS_TOKEN"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool

	// AllowMissing treats a missing file as an empty definition, so a
	// credential can come from the environment alone.
	AllowMissing bool

	// Keyring and Getenv default to the OS keyring and os.Getenv.
	Keyring Keyring
	Getenv  func(string) string

	Definition *Definition
}

// Definition represents the akops.yaml structure
type Definition struct {
	Version        int                `yaml:"version"`
	DefaultProfile string             `yaml:"default_profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile is one Akeyless endpoint plus the credential used against it.
type Profile struct {
	URL              string `yaml:"url,omitempty"`
	AuthMethod       string `yaml:"auth_method,omitempty"`
	AccessID         string `yaml:"access_id,omitempty"`
	AccessKey        string `yaml:"access_key,omitempty"`
	Token            string `yaml:"token,omitempty"`
	AllowInsecureTLS bool   `yaml:"allow_insecure_tls,omitempty"`
	CACert           string `yaml:"ca_cert,omitempty"`
	TimeoutMs        int    `yaml:"timeout_ms,omitempty"` // default: 30000
}

// Load reads and parses the akops.yaml file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if c.AllowMissing {
				c.Definition = &Definition{}
				return nil
			}
			return akerrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create akops.yaml with a 'profiles:' section, or set AKEYLESS_ACCESS_ID and AKEYLESS_ACCESS_KEY",
			}
		}
		return akerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return akerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return akerrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your akops.yaml file",
		}
	}

	for _, name := range sortedKeys(def.Profiles) {
		p := def.Profiles[name]
		if _, err := akeyless.ParseAuthMethod(p.AuthMethod); err != nil {
			return akerrors.ConfigError{
				Field:      fmt.Sprintf("profiles.%s.auth_method", name),
				Value:      p.AuthMethod,
				Message:    "unsupported authentication method",
				Suggestion: "Use 'access_key' or 'token'",
			}
		}
		if p.TimeoutMs < 0 {
			return akerrors.ConfigError{
				Field:   fmt.Sprintf("profiles.%s.timeout_ms", name),
				Value:   p.TimeoutMs,
				Message: "timeout must not be negative",
			}
		}
	}

	c.Definition = &def
	return nil
}

// ProfileName resolves the profile to use when the caller passes name.
func (c *Config) ProfileName(name string) string {
	if name != "" {
		return name
	}
	if c.Definition != nil && c.Definition.DefaultProfile != "" {
		return c.Definition.DefaultProfile
	}
	return DefaultProfile
}

// GetProfile returns the file values for a profile. The default profile may
// be absent from the file; any other missing profile is an error.
func (c *Config) GetProfile(name string) (Profile, error) {
	if c.Definition == nil {
		return Profile{}, akerrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	name = c.ProfileName(name)
	if p, ok := c.Definition.Profiles[name]; ok {
		return p, nil
	}
	if name == DefaultProfile {
		return Profile{}, nil
	}

	available := sortedKeys(c.Definition.Profiles)
	suggestion := "Add the profile to the 'profiles:' section of your akops.yaml"
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available profiles: %s", strings.Join(available, ", "))
	}
	return Profile{}, akerrors.ConfigError{
		Field:      "profile",
		Value:      name,
		Message:    "profile not found",
		Suggestion: suggestion,
	}
}

// Credential builds the credential for a profile. Environment variables win
// over file values; the keyring fills secrets the file and environment leave
// empty. A stored token wins over a stored access key.
func (c *Config) Credential(name string) (akeyless.Credential, error) {
	name = c.ProfileName(name)
	p, err := c.GetProfile(name)
	if err != nil {
		return akeyless.Credential{}, err
	}

	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	override(&p.URL, getenv(EnvURL))
	override(&p.AccessID, getenv(EnvAccessID))
	override(&p.AccessKey, getenv(EnvAccessKey))
	override(&p.Token, getenv(EnvToken))

	method, err := akeyless.ParseAuthMethod(p.AuthMethod)
	if err != nil {
		return akeyless.Credential{}, err
	}

	kr := c.Keyring
	if kr == nil {
		kr = SystemKeyring()
	}
	if p.Token == "" && (method == akeyless.AuthMethodToken || p.AccessKey == "") {
		p.Token = c.keyringSecret(kr, name, FieldToken)
	}
	if method == akeyless.AuthMethodAccessKey && p.Token == "" && p.AccessKey == "" {
		p.AccessKey = c.keyringSecret(kr, name, FieldAccessKey)
	}

	if c.Logger != nil {
		c.Logger.Debug("Using profile %s (%s, auth %s)", name, p.URL, method)
	}

	return akeyless.Credential{
		BaseURL:          p.URL,
		AuthMethod:       method,
		AccessID:         p.AccessID,
		AccessKey:        logging.Secret(p.AccessKey),
		Token:            logging.Secret(p.Token),
		AllowInsecureTLS: p.AllowInsecureTLS,
		CACert:           p.CACert,
	}, nil
}

// keyringSecret reads one stored secret. An unreadable keyring, as on a
// headless host without a Secret Service, counts as an empty entry so the
// credential check reports what is actually missing.
func (c *Config) keyringSecret(kr Keyring, profile, field string) string {
	value, err := LookupSecret(kr, profile, field)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Debug("Keyring unavailable, skipping %s: %v", field, err)
		}
		return ""
	}
	return value
}

// Timeout returns the per-call timeout for a profile.
func (c *Config) Timeout(name string) time.Duration {
	p, err := c.GetProfile(name)
	if err != nil {
		return DefaultTimeoutMs * time.Millisecond
	}
	return p.GetTimeout()
}

// GetTimeout returns the profile timeout, defaulting to 30 seconds
func (p Profile) GetTimeout() time.Duration {
	if p.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

func override(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func sortedKeys(m map[string]Profile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
