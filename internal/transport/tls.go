package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// TLSTransport implements the Transport interface over TLS on TCP.
type TLSTransport struct {
	connTransport
	dialer tls.Dialer
}

// NewTLSTransport creates a transport for address. host is used as the
// verification name unless cfg.ServerName overrides it.
func NewTLSTransport(address, host string, cfg config.TLSConfig, timeout time.Duration) (*TLSTransport, error) {
	tlsConfig, err := buildTLSConfig(host, cfg)
	if err != nil {
		return nil, err
	}

	return &TLSTransport{
		connTransport: connTransport{address: address},
		dialer: tls.Dialer{
			NetDialer: &net.Dialer{Timeout: timeout},
			Config:    tlsConfig,
		},
	}, nil
}

// Connect dials and completes the TLS handshake
func (t *TLSTransport) Connect(ctx context.Context) error {
	conn, err := t.dialer.DialContext(ctx, "tcp", t.address)
	if err != nil {
		return connectError(t.address, err)
	}

	t.conn = conn
	return nil
}

func buildTLSConfig(host string, cfg config.TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in through configuration
	}
	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration, "failed to read CA file", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, gvmerrors.NewConfigFieldError(gvmerrors.CodeValidation,
				fmt.Sprintf("no certificates found in %s", cfg.CAFile), "connection.tls.ca_file", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration, "failed to load client certificate", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
