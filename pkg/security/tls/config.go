package tls

import (
	"crypto/tls"
	"fmt"

	"webeng-hq/hello/pkg/config"
)

// NewServerConfig returns the server-side tls.Config for cfg. Certificates
// come from reloader.
func NewServerConfig(cfg config.TLSConfig, reloader *CertificateReloader) (*tls.Config, error) {
	minVersion, err := ParseVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}
	suites, err := ParseCipherSuites(cfg.CipherSuites)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion is 1.2 or 1.3
	return &tls.Config{
		MinVersion:     minVersion,
		CipherSuites:   suites,
		GetCertificate: reloader.GetCertificateFunc(),
		NextProtos:     []string{"h2", "http/1.1"},
	}, nil
}

// ParseVersion converts "1.2" or "1.3" to the tls package constant. The
// empty string selects TLS 1.2.
func ParseVersion(v string) (uint16, error) {
	switch v {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", v)
	}
}

// ParseCipherSuites converts cipher suite names to IDs. Only suites Go
// considers secure are accepted. An empty list returns nil so that Go's
// defaults apply.
func ParseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	secure := make(map[string]uint16)
	for _, s := range tls.CipherSuites() {
		secure[s.Name] = s.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := secure[name]
		if !ok {
			return nil, fmt.Errorf("unsupported cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
