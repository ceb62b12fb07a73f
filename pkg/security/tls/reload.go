package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// CertificateReloader holds the current certificate and re-reads it when
// the files change. It is safe for concurrent use.
type CertificateReloader struct {
	certFile string
	keyFile  string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewCertificateReloader creates a reloader. Call Load before serving.
func NewCertificateReloader(certFile, keyFile string, interval time.Duration, logger *slog.Logger) *CertificateReloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
		logger:   logger.With("component", "tls"),
		now:      time.Now,
	}
}

// Load reads the certificate and key. On error the previously loaded
// certificate, if any, is kept.
func (r *CertificateReloader) Load() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return fmt.Errorf("certificate file: %w", err)
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return fmt.Errorf("key file: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	if err := ValidateCertificate(&cert, r.now()); err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()

	r.logCertificate(&cert)
	return nil
}

// Run checks the files every interval until ctx is done.
func (r *CertificateReloader) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reloadIfChanged()
		case <-ctx.Done():
			return
		}
	}
}

func (r *CertificateReloader) reloadIfChanged() {
	if !r.changed() {
		return
	}
	if err := r.Load(); err != nil {
		r.logger.Error("failed to reload certificate",
			"error", err,
			"cert_file", r.certFile,
			"key_file", r.keyFile,
		)
		return
	}
	r.logger.Info("certificate reloaded", "cert_file", r.certFile)
}

func (r *CertificateReloader) changed() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return !certInfo.ModTime().Equal(r.certTime) || !keyInfo.ModTime().Equal(r.keyTime)
}

// Certificate returns the current certificate, or nil before Load.
func (r *CertificateReloader) Certificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc returns a tls.Config.GetCertificate callback.
func (r *CertificateReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cert := r.Certificate()
		if cert == nil {
			return nil, fmt.Errorf("no certificate loaded")
		}
		return cert, nil
	}
}

func (r *CertificateReloader) logCertificate(cert *tls.Certificate) {
	leaf, err := Leaf(cert)
	if err != nil {
		return
	}
	now := r.now()
	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
		"expires_in_days", int(leaf.NotAfter.Sub(now).Hours() / 24),
	}
	if ExpiresSoon(leaf, now) {
		r.logger.Warn("certificate expiring soon", attrs...)
		return
	}
	r.logger.Info("certificate loaded", attrs...)
}
