package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// writeSelfSignedCert creates a certificate for 127.0.0.1 and returns the
// paths of the PEM encoded certificate and key.
func writeSelfSignedCert(t *testing.T) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "gvmd test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return certFile, keyFile
}

func startTLSServer(t *testing.T, certFile, keyFile string, reply string) string {
	t.Helper()

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	require.NoError(t, err)

	listener, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		_, _ = conn.Write([]byte(reply))
	}()

	t.Cleanup(func() {
		listener.Close()
		<-done
	})
	return listener.Addr().String()
}

func TestTLSTransport_RoundTrip(t *testing.T) {
	certFile, keyFile := writeSelfSignedCert(t)
	address := startTLSServer(t, certFile, keyFile, `<get_version_response status="200"/>`)

	tr, err := NewTLSTransport(address, "127.0.0.1", config.TLSConfig{CAFile: certFile}, time.Second)
	require.NoError(t, err)
	require.NoError(t, tr.Connect(context.Background()))
	defer tr.Close()

	_, err = tr.Write([]byte("<get_version/>"))
	require.NoError(t, err)

	buf := make([]byte, 256)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, `<get_version_response status="200"/>`, string(buf[:n]))
}

func TestTLSTransport_UnknownAuthority(t *testing.T) {
	certFile, keyFile := writeSelfSignedCert(t)
	address := startTLSServer(t, certFile, keyFile, "")

	tr, err := NewTLSTransport(address, "127.0.0.1", config.TLSConfig{}, time.Second)
	require.NoError(t, err)

	err = tr.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, gvmerrors.CodeConnectFailed, gvmerrors.GetCode(err))
}

func TestTLSTransport_InsecureSkipVerify(t *testing.T) {
	certFile, keyFile := writeSelfSignedCert(t)
	address := startTLSServer(t, certFile, keyFile, `<r status="200"/>`)

	tr, err := NewTLSTransport(address, "gvm.invalid", config.TLSConfig{InsecureSkipVerify: true}, time.Second)
	require.NoError(t, err)
	require.NoError(t, tr.Connect(context.Background()))
	assert.NoError(t, tr.Close())
}

func TestBuildTLSConfig(t *testing.T) {
	certFile, keyFile := writeSelfSignedCert(t)

	t.Run("server name override", func(t *testing.T) {
		cfg, err := buildTLSConfig("10.0.0.1", config.TLSConfig{ServerName: "gvm.example.org"})
		require.NoError(t, err)
		assert.Equal(t, "gvm.example.org", cfg.ServerName)
		assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	})

	t.Run("client certificate", func(t *testing.T) {
		cfg, err := buildTLSConfig("127.0.0.1", config.TLSConfig{CertFile: certFile, KeyFile: keyFile})
		require.NoError(t, err)
		assert.Len(t, cfg.Certificates, 1)
	})

	t.Run("missing CA file", func(t *testing.T) {
		_, err := buildTLSConfig("127.0.0.1", config.TLSConfig{CAFile: filepath.Join(t.TempDir(), "nope.pem")})
		require.Error(t, err)
		assert.True(t, gvmerrors.IsFatal(err))
	})

	t.Run("CA file without certificates", func(t *testing.T) {
		_, err := buildTLSConfig("127.0.0.1", config.TLSConfig{CAFile: keyFile})
		require.Error(t, err)
		var configErr *gvmerrors.ConfigError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "connection.tls.ca_file", configErr.Field)
	})
}
