package akeyless

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind names an operation. The values match the operation names used by
// batch documents and the CLI.
type Kind string

const (
	KindGetStaticSecret  Kind = "getStaticSecret"
	KindGetRotatedSecret Kind = "getRotatedSecret"
	KindGetDynamicSecret Kind = "getDynamicSecret"
	KindCreateSecret     Kind = "createSecret"
	KindDeleteItems      Kind = "deleteItems"
	KindCreateFolder     Kind = "createFolder"
	KindDeleteFolder     Kind = "deleteFolder"
)

var kinds = map[Kind]struct{}{
	KindGetStaticSecret:  {},
	KindGetRotatedSecret: {},
	KindGetDynamicSecret: {},
	KindCreateSecret:     {},
	KindDeleteItems:      {},
	KindCreateFolder:     {},
	KindDeleteFolder:     {},
}

// Kinds returns every supported operation name, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// ParseKind maps an operation name onto a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.TrimSpace(name))
	if _, ok := kinds[k]; !ok {
		return "", &ValidationError{Message: fmt.Sprintf("unknown operation: %s", name)}
	}
	return k, nil
}

// Accessibility values.
const (
	AccessibilityRegular  = "regular"
	AccessibilityPersonal = "personal"
)

// SecretType values for CreateSecret.
const (
	SecretTypeGeneric  = "generic"
	SecretTypePassword = "password"
)

// DefaultDynamicSecretTimeout is the dynamic secret producer timeout in seconds.
const DefaultDynamicSecretTimeout = 15

// Operation is one of the seven request variants. The set is closed: only
// types in this package implement it.
type Operation interface {
	Kind() Kind
	endpoint() string
	body(token string) interface{}
}

// GetStaticSecret reads a static secret value.
type GetStaticSecret struct {
	Name          string
	Accessibility string
	IgnoreCache   bool
}

// GetRotatedSecret reads the current value of a rotated secret.
type GetRotatedSecret struct {
	Name        string
	IgnoreCache bool
}

// GetDynamicSecret asks a dynamic secret producer for fresh credentials.
type GetDynamicSecret struct {
	Name string
	// Timeout is the producer timeout in seconds.
	Timeout int
}

// CreateSecret creates a static secret. Value is sent for generic secrets,
// Username and Password for password secrets.
type CreateSecret struct {
	Name                    string
	Type                    string
	Format                  string
	Accessibility           string
	Value                   string
	Username                string
	Password                string
	SecureAccessWebBrowsing bool
	SecureAccessWebProxy    bool
}

// DeleteItems deletes every item under a path.
type DeleteItems struct {
	Path string
}

// CreateFolder creates a folder.
type CreateFolder struct {
	Name          string
	Accessibility string
}

// DeleteFolder deletes a folder.
type DeleteFolder struct {
	Name          string
	Accessibility string
}

func (GetStaticSecret) Kind() Kind  { return KindGetStaticSecret }
func (GetRotatedSecret) Kind() Kind { return KindGetRotatedSecret }
func (GetDynamicSecret) Kind() Kind { return KindGetDynamicSecret }
func (CreateSecret) Kind() Kind     { return KindCreateSecret }
func (DeleteItems) Kind() Kind      { return KindDeleteItems }
func (CreateFolder) Kind() Kind     { return KindCreateFolder }
func (DeleteFolder) Kind() Kind     { return KindDeleteFolder }

func (GetStaticSecret) endpoint() string  { return "/get-secret-value" }
func (GetRotatedSecret) endpoint() string { return "/get-rotated-secret-value" }
func (GetDynamicSecret) endpoint() string { return "/get-dynamic-secret-value" }
func (CreateSecret) endpoint() string     { return "/create-secret" }
func (DeleteItems) endpoint() string      { return "/delete-items" }
func (CreateFolder) endpoint() string     { return "/folder-create" }
func (DeleteFolder) endpoint() string     { return "/folder-delete" }

// Wire bodies. Field names are part of the vendor contract; "json" is the
// vendor flag asking for plain rather than structured encoding.

type getSecretValueBody struct {
	Accessibility string   `json:"accessibility"`
	IgnoreCache   string   `json:"ignore-cache"`
	JSON          bool     `json:"json"`
	Names         []string `json:"names"`
	Token         string   `json:"token"`
}

type getRotatedSecretValueBody struct {
	IgnoreCache string `json:"ignore-cache"`
	JSON        bool   `json:"json"`
	Names       string `json:"names"`
	Token       string `json:"token"`
}

type getDynamicSecretValueBody struct {
	JSON    bool   `json:"json"`
	Timeout int    `json:"timeout"`
	Name    string `json:"name"`
	Token   string `json:"token"`
}

type createSecretBody struct {
	Accessibility           string  `json:"accessibility"`
	Format                  string  `json:"format"`
	JSON                    bool    `json:"json"`
	SecureAccessWebBrowsing bool    `json:"secure-access-web-browsing"`
	SecureAccessWebProxy    bool    `json:"secure-access-web-proxy"`
	Type                    string  `json:"type"`
	Token                   string  `json:"token"`
	Name                    string  `json:"name"`
	Value                   *string `json:"value,omitempty"`
	Username                *string `json:"username,omitempty"`
	Password                *string `json:"password,omitempty"`
}

type deleteItemsBody struct {
	JSON  bool   `json:"json"`
	Token string `json:"token"`
	Path  string `json:"path"`
}

type folderBody struct {
	Accessibility string `json:"accessibility"`
	JSON          bool   `json:"json"`
	Name          string `json:"name"`
	Token         string `json:"token"`
}

func (o GetStaticSecret) body(token string) interface{} {
	return getSecretValueBody{
		Accessibility: orDefault(o.Accessibility, AccessibilityRegular),
		IgnoreCache:   strconv.FormatBool(o.IgnoreCache),
		Names:         []string{o.Name},
		Token:         token,
	}
}

func (o GetRotatedSecret) body(token string) interface{} {
	return getRotatedSecretValueBody{
		IgnoreCache: strconv.FormatBool(o.IgnoreCache),
		Names:       o.Name,
		Token:       token,
	}
}

func (o GetDynamicSecret) body(token string) interface{} {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultDynamicSecretTimeout
	}
	return getDynamicSecretValueBody{
		Timeout: timeout,
		Name:    o.Name,
		Token:   token,
	}
}

func (o CreateSecret) body(token string) interface{} {
	b := createSecretBody{
		Accessibility:           orDefault(o.Accessibility, AccessibilityRegular),
		Format:                  orDefault(o.Format, "text"),
		SecureAccessWebBrowsing: o.SecureAccessWebBrowsing,
		SecureAccessWebProxy:    o.SecureAccessWebProxy,
		Type:                    orDefault(o.Type, SecretTypeGeneric),
		Token:                   token,
		Name:                    o.Name,
	}
	if b.Type == SecretTypePassword {
		username, password := o.Username, o.Password
		b.Username = &username
		b.Password = &password
	} else {
		value := o.Value
		b.Value = &value
	}
	return b
}

func (o DeleteItems) body(token string) interface{} {
	return deleteItemsBody{Token: token, Path: o.Path}
}

func (o CreateFolder) body(token string) interface{} {
	return folderBody{Accessibility: orDefault(o.Accessibility, AccessibilityRegular), Name: o.Name, Token: token}
}

func (o DeleteFolder) body(token string) interface{} {
	return folderBody{Accessibility: orDefault(o.Accessibility, AccessibilityRegular), Name: o.Name, Token: token}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Parameters is the loose, per-record parameter set as it arrives from a
// batch document or the CLI. NewOperation narrows it to one variant.
type Parameters struct {
	SecretName              string `yaml:"secretName" json:"secretName"`
	Accessibility           string `yaml:"accessibility" json:"accessibility"`
	IgnoreCache             bool   `yaml:"ignoreCache" json:"ignoreCache"`
	Timeout                 int    `yaml:"timeout" json:"timeout"`
	SecretValue             string `yaml:"secretValue" json:"secretValue"`
	Username                string `yaml:"username" json:"username"`
	Password                string `yaml:"password" json:"password"`
	Format                  string `yaml:"format" json:"format"`
	SecretType              string `yaml:"secretType" json:"secretType"`
	SecureAccessWebBrowsing bool   `yaml:"secureAccessWebBrowsing" json:"secureAccessWebBrowsing"`
	SecureAccessWebProxy    bool   `yaml:"secureAccessWebProxy" json:"secureAccessWebProxy"`
	Path                    string `yaml:"path" json:"path"`
	FolderName              string `yaml:"folderName" json:"folderName"`
	FolderAccessibility     string `yaml:"folderAccessibility" json:"folderAccessibility"`
}

// NewOperation builds the variant named by kind, checking that its required
// parameters are present.
func NewOperation(kind string, p Parameters) (Operation, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}

	switch k {
	case KindGetStaticSecret:
		if err := required("secretName", p.SecretName); err != nil {
			return nil, err
		}
		if err := oneOf("accessibility", p.Accessibility, AccessibilityRegular, AccessibilityPersonal); err != nil {
			return nil, err
		}
		return GetStaticSecret{Name: p.SecretName, Accessibility: p.Accessibility, IgnoreCache: p.IgnoreCache}, nil

	case KindGetRotatedSecret:
		if err := required("secretName", p.SecretName); err != nil {
			return nil, err
		}
		return GetRotatedSecret{Name: p.SecretName, IgnoreCache: p.IgnoreCache}, nil

	case KindGetDynamicSecret:
		if err := required("secretName", p.SecretName); err != nil {
			return nil, err
		}
		if p.Timeout < 0 {
			return nil, &ValidationError{Field: "timeout", Message: "must not be negative"}
		}
		return GetDynamicSecret{Name: p.SecretName, Timeout: p.Timeout}, nil

	case KindCreateSecret:
		if err := required("secretName", p.SecretName); err != nil {
			return nil, err
		}
		if err := oneOf("secretType", p.SecretType, SecretTypeGeneric, SecretTypePassword); err != nil {
			return nil, err
		}
		if err := oneOf("format", p.Format, "text", "json"); err != nil {
			return nil, err
		}
		if err := oneOf("accessibility", p.Accessibility, AccessibilityRegular, AccessibilityPersonal); err != nil {
			return nil, err
		}
		op := CreateSecret{
			Name:                    p.SecretName,
			Type:                    orDefault(p.SecretType, SecretTypeGeneric),
			Format:                  p.Format,
			Accessibility:           p.Accessibility,
			SecureAccessWebBrowsing: p.SecureAccessWebBrowsing,
			SecureAccessWebProxy:    p.SecureAccessWebProxy,
		}
		if op.Type == SecretTypePassword {
			op.Username, op.Password = p.Username, p.Password
		} else {
			op.Value = p.SecretValue
		}
		return op, nil

	case KindDeleteItems:
		if err := required("path", p.Path); err != nil {
			return nil, err
		}
		return DeleteItems{Path: p.Path}, nil

	case KindCreateFolder, KindDeleteFolder:
		if err := required("folderName", p.FolderName); err != nil {
			return nil, err
		}
		if err := oneOf("folderAccessibility", p.FolderAccessibility, AccessibilityRegular, AccessibilityPersonal); err != nil {
			return nil, err
		}
		if k == KindCreateFolder {
			return CreateFolder{Name: p.FolderName, Accessibility: p.FolderAccessibility}, nil
		}
		return DeleteFolder{Name: p.FolderName, Accessibility: p.FolderAccessibility}, nil
	}

	return nil, &ValidationError{Message: fmt.Sprintf("unknown operation: %s", kind)}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// oneOf accepts the empty string, which means "use the default".
func oneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{Field: field, Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(allowed, ", "), value)}
}
