package akeyless

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// TransportConfig describes the TLS behaviour of a single Client. Each Client
// gets its own *http.Transport, so relaxing verification for one endpoint
// never affects other HTTP clients in the process.
type TransportConfig struct {
	// InsecureSkipVerify disables TLS verification (use with caution)
	InsecureSkipVerify bool

	// CACert is path to custom CA certificate for self-hosted gateways
	CACert string
}

func newHTTPClient(cfg TransportConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}

		transport.TLSClientConfig.RootCAs = caCertPool
	}

	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	// Timeouts are applied per call through the request context.
	return &http.Client{Transport: transport}, nil
}
