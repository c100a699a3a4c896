package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid yaml config",
			file: "config.yaml",
			content: `
connection:
  transport: tls
  host: gvm.example.org
  port: 9390
  timeout: 2m
  tls:
    ca_file: /etc/gvm/ca.pem
credentials:
  username: admin
  password: secret
logging:
  level: debug
  format: json
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Connection.Transport != TransportTLS {
					t.Errorf("Expected tls transport, got %s", cfg.Connection.Transport)
				}
				if cfg.Connection.Timeout != 2*time.Minute {
					t.Errorf("Expected 2m timeout, got %v", cfg.Connection.Timeout)
				}
				if cfg.Connection.TLS.CAFile != "/etc/gvm/ca.pem" {
					t.Errorf("Expected CA file, got %q", cfg.Connection.TLS.CAFile)
				}
				if cfg.Credentials.Username != "admin" {
					t.Errorf("Expected username admin, got %q", cfg.Credentials.Username)
				}
				if cfg.Connection.ReadBufferSize != 32*1024 {
					t.Errorf("Expected default read buffer size, got %d", cfg.Connection.ReadBufferSize)
				}
			},
		},
		{
			name: "json config with comments",
			file: "config.json",
			content: `{
				// local daemon
				"connection": {"transport": "unix", "socket_path": "/tmp/gvmd.sock",},
				"openvasd": {"url": "https://scanner:3000", "api_key": "k", "timeout": "5s"}
			}`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Connection.SocketPath != "/tmp/gvmd.sock" {
					t.Errorf("Expected socket path, got %q", cfg.Connection.SocketPath)
				}
				if cfg.Openvasd.Timeout != 5*time.Second {
					t.Errorf("Expected 5s openvasd timeout, got %v", cfg.Openvasd.Timeout)
				}
			},
		},
		{
			name: "ssh config",
			file: "config.yml",
			content: `
connection:
  transport: ssh
  host: scanner.local
  port: 22
  ssh:
    username: gvm
    key_file: /home/gvm/.ssh/id_ed25519
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Connection.SSH.Command == "" {
					t.Error("Expected default bridge command to be kept")
				}
			},
		},
		{
			name:    "invalid yaml",
			file:    "config.yaml",
			content: "connection: [unclosed",
			wantErr: true,
		},
		{
			name: "invalid transport",
			file: "config.yaml",
			content: `
connection:
  transport: carrier-pigeon
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)

			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Connection.SocketPath != DefaultSocketPath {
		t.Errorf("Expected default socket path, got %q", cfg.Connection.SocketPath)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Connection.Transport != TransportUnix {
		t.Errorf("Expected unix transport, got %q", cfg.Connection.Transport)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default configuration should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing socket path", func(c *Config) { c.Connection.SocketPath = "" }, "connection.socket_path"},
		{"tls without host", func(c *Config) {
			c.Connection.Transport = TransportTLS
			c.Connection.Host = ""
		}, "connection.host"},
		{"tls bad port", func(c *Config) {
			c.Connection.Transport = TransportTLS
			c.Connection.Port = 70000
		}, "connection.port"},
		{"tls cert without key", func(c *Config) {
			c.Connection.Transport = TransportTLS
			c.Connection.TLS.CertFile = "client.pem"
		}, "connection.tls.cert_file"},
		{"ssh without username", func(c *Config) {
			c.Connection.Transport = TransportSSH
			c.Connection.Port = DefaultSSHPort
		}, "connection.ssh.username"},
		{"ssh without secret", func(c *Config) {
			c.Connection.Transport = TransportSSH
			c.Connection.SSH.Username = "gvm"
		}, "connection.ssh.password"},
		{"negative timeout", func(c *Config) { c.Connection.Timeout = -time.Second }, "connection.timeout"},
		{"zero read buffer", func(c *Config) { c.Connection.ReadBufferSize = 0 }, "connection.read_buffer_size"},
		{"negative max response", func(c *Config) { c.Connection.MaxResponseSize = -1 }, "connection.max_response_size"},
		{"bad openvasd url", func(c *Config) { c.Openvasd.URL = "ftp://scanner" }, "openvasd.url"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad metrics address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.ListenAddr = "nowhere"
		}, "metrics.listen_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			configErr, ok := err.(*gvmerrors.ConfigError)
			if !ok {
				t.Fatalf("Expected *ConfigError, got %T", err)
			}
			if configErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, configErr.Field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Connection.Transport = TransportTLS
	cfg.Connection.Host = "gvm.example.org"
	cfg.Connection.Timeout = 90 * time.Second

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Connection.Host != "gvm.example.org" {
		t.Errorf("Expected host to round trip, got %q", loaded.Connection.Host)
	}
	if loaded.Connection.Timeout != 90*time.Second {
		t.Errorf("Expected timeout to round trip, got %v", loaded.Connection.Timeout)
	}
}

func TestAddress(t *testing.T) {
	unix := ConnectionConfig{Transport: TransportUnix, SocketPath: "/run/gvmd/gvmd.sock"}
	if unix.Address() != "/run/gvmd/gvmd.sock" {
		t.Errorf("Unexpected unix address %q", unix.Address())
	}

	tls := ConnectionConfig{Transport: TransportTLS, Host: "::1", Port: 9390}
	if tls.Address() != "[::1]:9390" {
		t.Errorf("Unexpected tls address %q", tls.Address())
	}
}
