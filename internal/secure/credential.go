package secure

import (
	"github.com/systmms/akops/internal/akeyless"
	"github.com/systmms/akops/internal/logging"
)

// SealedCredential is an akeyless.Credential whose access key and token are
// kept in enclaves until a request needs them.
type SealedCredential struct {
	BaseURL          string
	AuthMethod       akeyless.AuthMethod
	AccessID         string
	AllowInsecureTLS bool
	CACert           string

	accessKey *SecureBuffer
	token     *SecureBuffer
}

// Seal moves the secret fields of cred into enclaves.
func Seal(cred akeyless.Credential) (*SealedCredential, error) {
	accessKey, err := NewSecureBuffer([]byte(cred.AccessKey))
	if err != nil {
		return nil, err
	}
	token, err := NewSecureBuffer([]byte(cred.Token))
	if err != nil {
		accessKey.Destroy()
		return nil, err
	}

	return &SealedCredential{
		BaseURL:          cred.BaseURL,
		AuthMethod:       cred.AuthMethod,
		AccessID:         cred.AccessID,
		AllowInsecureTLS: cred.AllowInsecureTLS,
		CACert:           cred.CACert,
		accessKey:        accessKey,
		token:            token,
	}, nil
}

// Credential opens the enclaves and returns a plain credential for one call.
func (s *SealedCredential) Credential() (akeyless.Credential, error) {
	accessKey, err := s.accessKey.String()
	if err != nil {
		return akeyless.Credential{}, err
	}
	token, err := s.token.String()
	if err != nil {
		return akeyless.Credential{}, err
	}

	return akeyless.Credential{
		BaseURL:          s.BaseURL,
		AuthMethod:       s.AuthMethod,
		AccessID:         s.AccessID,
		AccessKey:        logging.Secret(accessKey),
		Token:            logging.Secret(token),
		AllowInsecureTLS: s.AllowInsecureTLS,
		CACert:           s.CACert,
	}, nil
}

// Destroy drops both enclaves.
func (s *SealedCredential) Destroy() {
	s.accessKey.Destroy()
	s.token.Destroy()
}
