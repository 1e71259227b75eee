package akeyless

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    AuthMethod
		wantErr bool
	}{
		{in: "", want: AuthMethodAccessKey},
		{in: "accessKey", want: AuthMethodAccessKey},
		{in: "access_key", want: AuthMethodAccessKey},
		{in: "token", want: AuthMethodToken},
		{in: "Token", want: AuthMethodToken},
		{in: "saml", wantErr: true},
		{in: "api_key", wantErr: true},
		{in: "t-token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthMethod(tt.in)
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentialURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultBaseURL, Credential{}.URL())
	assert.Equal(t, "https://gw.example.com/api/v2", Credential{BaseURL: " https://gw.example.com/api/v2/ "}.URL())
}

func TestCredentialValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Credential{Token: "t-1"}.Validate())
	require.NoError(t, Credential{AccessID: "p-1", AccessKey: "k"}.Validate())
	require.Error(t, Credential{AuthMethod: AuthMethodToken}.Validate())
	require.Error(t, Credential{AccessID: "p-1"}.Validate())
}

func TestCredentialDoesNotPrintSecrets(t *testing.T) {
	t.Parallel()

	cred := Credential{AccessID: "p-1", AccessKey: "very-secret-key", Token: "t-very-secret"}
	out := fmt.Sprintf("%+v %v %#v", cred, cred, cred)
	assert.NotContains(t, out, "very-secret-key")
	assert.NotContains(t, out, "t-very-secret")
	assert.Contains(t, out, "p-1")
}

func TestCredentialTransport(t *testing.T) {
	t.Parallel()

	tc := Credential{AllowInsecureTLS: true, CACert: "/etc/ca.pem"}.Transport()
	assert.True(t, tc.InsecureSkipVerify)
	assert.Equal(t, "/etc/ca.pem", tc.CACert)
}
