package tls

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/crypto/acme/autocert"

	"bragawork/internal/config"
	"bragawork/internal/util"
)

var ErrNoCertificate = errors.New("no certificate configured")

// TLSManager serves certificates from Let's Encrypt when a domain is
// configured, otherwise from the PEM pair on disk.
type TLSManager struct {
	config   config.ServerConfig
	autoCert *autocert.Manager
	fileCert *tls.Certificate
}

func NewTLSManager(cfg config.ServerConfig) (*TLSManager, error) {
	m := &TLSManager{config: cfg}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load certificate pair: %w", err)
		}
		m.fileCert = &cert
	}

	if cfg.AutoCert {
		if err := m.setupAutoCert(); err != nil {
			return nil, err
		}
	}

	if m.autoCert == nil && m.fileCert == nil {
		return nil, ErrNoCertificate
	}
	return m, nil
}

func (m *TLSManager) setupAutoCert() error {
	if err := os.MkdirAll(m.config.AutoCertDir, 0o700); err != nil {
		return fmt.Errorf("failed to create autocert directory: %w", err)
	}

	m.autoCert = &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(m.config.Domain),
		Cache:      autocert.DirCache(m.config.AutoCertDir),
		Email:      m.config.Email,
	}

	util.Info("AutoCert configured",
		util.String("domain", m.config.Domain),
		util.String("cache_dir", m.config.AutoCertDir))
	return nil
}

func (m *TLSManager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	if m.autoCert != nil {
		cert, err := m.autoCert.GetCertificate(hello)
		if err == nil || m.fileCert == nil {
			return cert, err
		}
		util.Warn("AutoCert failed, serving certificate from disk",
			util.String("server_name", hello.ServerName),
			util.ErrorField(err))
	}
	if m.fileCert != nil {
		return m.fileCert, nil
	}
	return nil, ErrNoCertificate
}

func (m *TLSManager) GetTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: m.GetCertificate,
		NextProtos:     []string{"h2", "http/1.1", "acme-tls/1"},
		MinVersion:     tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// AutoCert reports whether certificates come from ACME.
func (m *TLSManager) AutoCert() bool {
	return m.autoCert != nil
}

// HTTPHandler answers ACME http-01 challenges and redirects everything else
// to HTTPS.
func (m *TLSManager) HTTPHandler() http.Handler {
	if m.autoCert == nil {
		return http.HandlerFunc(redirectToHTTPS)
	}
	return m.autoCert.HTTPHandler(nil)
}

func redirectToHTTPS(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusFound)
}
