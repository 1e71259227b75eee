package akeyless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   string
		params Parameters
		want   Operation
	}{
		{
			name:   "static",
			kind:   "getStaticSecret",
			params: Parameters{SecretName: "db/password", IgnoreCache: true, Path: "leaks/nowhere"},
			want:   GetStaticSecret{Name: "db/password", IgnoreCache: true},
		},
		{
			name:   "rotated",
			kind:   "getRotatedSecret",
			params: Parameters{SecretName: "rot", Accessibility: "personal"},
			want:   GetRotatedSecret{Name: "rot"},
		},
		{
			name:   "dynamic",
			kind:   "getDynamicSecret",
			params: Parameters{SecretName: "dyn", Timeout: 30},
			want:   GetDynamicSecret{Name: "dyn", Timeout: 30},
		},
		{
			name:   "create_generic_defaults",
			kind:   "createSecret",
			params: Parameters{SecretName: "s", SecretValue: "v", Username: "unused"},
			want:   CreateSecret{Name: "s", Type: SecretTypeGeneric, Value: "v"},
		},
		{
			name:   "create_password",
			kind:   "createSecret",
			params: Parameters{SecretName: "s", SecretType: "password", Username: "u", Password: "p", SecretValue: "unused", SecureAccessWebProxy: true},
			want:   CreateSecret{Name: "s", Type: SecretTypePassword, Username: "u", Password: "p", SecureAccessWebProxy: true},
		},
		{
			name:   "delete_items",
			kind:   "deleteItems",
			params: Parameters{Path: "/tmp", SecretName: "unused"},
			want:   DeleteItems{Path: "/tmp"},
		},
		{
			name:   "create_folder",
			kind:   "createFolder",
			params: Parameters{FolderName: "f", FolderAccessibility: "personal", Accessibility: "regular"},
			want:   CreateFolder{Name: "f", Accessibility: "personal"},
		},
		{
			name:   "delete_folder",
			kind:   " deleteFolder ",
			params: Parameters{FolderName: "f"},
			want:   DeleteFolder{Name: "f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewOperation(tt.kind, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewOperation_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    string
		params  Parameters
		errText string
	}{
		{name: "unknown", kind: "listEverything", errText: "unknown operation: listEverything"},
		{name: "empty_kind", kind: "", errText: "unknown operation"},
		{name: "static_without_name", kind: "getStaticSecret", errText: "secretName is required"},
		{name: "rotated_blank_name", kind: "getRotatedSecret", params: Parameters{SecretName: "  "}, errText: "secretName is required"},
		{name: "dynamic_negative_timeout", kind: "getDynamicSecret", params: Parameters{SecretName: "d", Timeout: -1}, errText: "timeout"},
		{name: "create_bad_type", kind: "createSecret", params: Parameters{SecretName: "s", SecretType: "ssh"}, errText: "secretType"},
		{name: "create_bad_format", kind: "createSecret", params: Parameters{SecretName: "s", Format: "xml"}, errText: "format"},
		{name: "static_bad_accessibility", kind: "getStaticSecret", params: Parameters{SecretName: "s", Accessibility: "public"}, errText: "accessibility"},
		{name: "delete_items_without_path", kind: "deleteItems", errText: "path is required"},
		{name: "folder_without_name", kind: "createFolder", errText: "folderName is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOperation(tt.kind, tt.params)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"createFolder", "createSecret", "deleteFolder", "deleteItems",
		"getDynamicSecret", "getRotatedSecret", "getStaticSecret",
	}, Kinds())

	for _, name := range Kinds() {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(k))
	}
}

func TestOperationKinds(t *testing.T) {
	t.Parallel()

	ops := map[Kind]Operation{
		KindGetStaticSecret:  GetStaticSecret{},
		KindGetRotatedSecret: GetRotatedSecret{},
		KindGetDynamicSecret: GetDynamicSecret{},
		KindCreateSecret:     CreateSecret{},
		KindDeleteItems:      DeleteItems{},
		KindCreateFolder:     CreateFolder{},
		KindDeleteFolder:     DeleteFolder{},
	}
	for kind, op := range ops {
		assert.Equal(t, kind, op.Kind())
		assert.NotEmpty(t, op.endpoint())
	}
}
