// Package tlsutil builds TLS configuration for outbound connections to the
// record store and the upstream data providers.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/Hamza-spc/CountryCompare/errors"
)

// Config describes client-side TLS. The system CA bundle is always trusted;
// CAFiles are additional roots. CertFile and KeyFile enable mutual TLS.
type Config struct {
	CAFiles            []string `json:"ca_files,omitempty"`
	CertFile           string   `json:"cert_file,omitempty"`
	KeyFile            string   `json:"key_file,omitempty"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty"` // development only
	MinVersion         string   `json:"min_version,omitempty"`          // "1.2" or "1.3"
}

// IsZero reports whether cfg leaves every setting at its default, in which
// case callers keep their stock transport.
func (cfg Config) IsZero() bool {
	return len(cfg.CAFiles) == 0 && cfg.CertFile == "" && cfg.KeyFile == "" &&
		!cfg.InsecureSkipVerify && cfg.MinVersion == ""
}

// Validate checks the settings without touching the filesystem.
func (cfg Config) Validate() error {
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tlsutil", "Validate",
			"cert_file and key_file must be set together")
	}
	switch cfg.MinVersion {
	case "", "1.2", "1.3":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tlsutil", "Validate",
			fmt.Sprintf("unsupported min_version %q", cfg.MinVersion))
	}
	return nil
}

// LoadClientConfig creates a tls.Config from cfg.
func LoadClientConfig(cfg Config) (*tls.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		MinVersion: parseTLSVersion(cfg.MinVersion),
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		rootCAs = x509.NewCertPool()
	}
	for _, caFile := range cfg.CAFiles {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, errors.WrapFatal(err, "tlsutil", "LoadClientConfig", fmt.Sprintf("read CA file %s", caFile))
		}
		if !rootCAs.AppendCertsFromPEM(caPEM) {
			return nil, errors.WrapFatal(
				fmt.Errorf("invalid PEM data"),
				"tlsutil",
				"LoadClientConfig",
				fmt.Sprintf("parse CA certificate from %s", caFile),
			)
		}
	}
	tlsConfig.RootCAs = rootCAs

	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, errors.WrapFatal(err, "tlsutil", "LoadClientConfig", "load client certificate")
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	return tlsConfig, nil
}

// HTTPClient returns an http.Client whose transport uses tlsConfig.
func HTTPClient(tlsConfig *tls.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport}
}

// parseTLSVersion returns tls.VersionTLS12 for an empty or unknown version.
func parseTLSVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
