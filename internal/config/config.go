// Package config loads and validates the gvmclient configuration file.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// Transport types understood by the connection section.
const (
	TransportUnix = "unix"
	TransportTLS  = "tls"
	TransportSSH  = "ssh"
)

const (
	// DefaultSocketPath is where gvmd listens for local clients.
	DefaultSocketPath = "/run/gvmd/gvmd.sock"
	// DefaultTLSPort is the port gvmd uses for TLS connections.
	DefaultTLSPort = 9390
	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22
)

// Config represents the complete client configuration
type Config struct {
	// Connection to the manager daemon
	Connection ConnectionConfig `yaml:"connection" json:"connection"`

	// Credentials used for the authenticate command
	Credentials CredentialsConfig `yaml:"credentials" json:"credentials"`

	// Scanner daemon HTTP API
	Openvasd OpenvasdConfig `yaml:"openvasd" json:"openvasd"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ConnectionConfig holds the transport settings for the XML protocol
type ConnectionConfig struct {
	// Transport type: unix, tls or ssh
	Transport string `yaml:"transport" json:"transport"`

	// UNIX domain socket path (unix transport)
	SocketPath string `yaml:"socket_path" json:"socket_path"`

	// Remote host (tls and ssh transports)
	Host string `yaml:"host" json:"host"`

	// Remote port (tls and ssh transports)
	Port int `yaml:"port" json:"port"`

	// Read/write deadline for one request/response exchange
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Size of the buffer used for each transport read
	ReadBufferSize int `yaml:"read_buffer_size" json:"read_buffer_size"`

	// Maximum size of one response in bytes, 0 for no limit
	MaxResponseSize int64 `yaml:"max_response_size" json:"max_response_size"`

	// TLS settings
	TLS TLSConfig `yaml:"tls" json:"tls"`

	// SSH settings
	SSH SSHConfig `yaml:"ssh" json:"ssh"`
}

// TLSConfig holds TLS settings
type TLSConfig struct {
	// CA certificate file used to verify the server
	CAFile string `yaml:"ca_file" json:"ca_file"`

	// Client certificate file
	CertFile string `yaml:"cert_file" json:"cert_file"`

	// Client private key file
	KeyFile string `yaml:"key_file" json:"key_file"`

	// Server name for certificate verification, defaults to the host
	ServerName string `yaml:"server_name" json:"server_name"`

	// Skip server certificate verification
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// SSHConfig holds SSH settings
type SSHConfig struct {
	// Login name
	Username string `yaml:"username" json:"username"`

	// Password authentication
	Password string `yaml:"password" json:"password"`

	// Private key file for public key authentication
	KeyFile string `yaml:"key_file" json:"key_file"`

	// known_hosts file; empty disables host key checking
	KnownHostsFile string `yaml:"known_hosts_file" json:"known_hosts_file"`

	// Subsystem to request; empty runs Command instead
	Subsystem string `yaml:"subsystem" json:"subsystem"`

	// Remote command bridging the session to the daemon socket
	Command string `yaml:"command" json:"command"`
}

// CredentialsConfig holds the manager user credentials
type CredentialsConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// OpenvasdConfig holds scanner daemon HTTP API settings
type OpenvasdConfig struct {
	// Base URL, for example https://127.0.0.1:3000
	URL string `yaml:"url" json:"url"`

	// API key sent in the X-API-KEY header
	APIKey string `yaml:"api_key" json:"api_key"`

	// Request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Skip server certificate verification
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Log output (stdout, stderr, discard, file path)
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	// Enable the metrics endpoint
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address of the metrics endpoint
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Transport:       TransportUnix,
			SocketPath:      DefaultSocketPath,
			Host:            "127.0.0.1",
			Port:            DefaultTLSPort,
			Timeout:         60 * time.Second,
			ReadBufferSize:  32 * 1024,
			MaxResponseSize: 0,
			SSH: SSHConfig{
				Command: "socat UNIX:" + DefaultSocketPath + " -",
			},
		},
		Openvasd: OpenvasdConfig{
			URL:     "http://127.0.0.1:3000",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9465",
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := Default()

	if path == "" {
		return config, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // Return defaults if no config file
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration, "failed to read config file", err)
	}

	// JSON files may carry comments; stripped they are valid YAML
	if configFormat(path) == "JSON" {
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration,
			fmt.Sprintf("failed to parse %s config", configFormat(path)), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func configFormat(path string) string {
	switch filepath.Ext(path) {
	case ".json":
		return "JSON"
	default:
		return "YAML"
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	conn := c.Connection

	switch conn.Transport {
	case TransportUnix:
		if conn.SocketPath == "" {
			return gvmerrors.ErrConfigMissing("connection.socket_path")
		}
	case TransportTLS, TransportSSH:
		if conn.Host == "" {
			return gvmerrors.ErrConfigMissing("connection.host")
		}
		if conn.Port <= 0 || conn.Port > 65535 {
			return gvmerrors.ErrConfigInvalid("connection.port", conn.Port)
		}
	default:
		return gvmerrors.ErrConfigInvalid("connection.transport", conn.Transport)
	}

	if conn.Transport == TransportTLS && (conn.TLS.CertFile == "") != (conn.TLS.KeyFile == "") {
		return gvmerrors.NewConfigFieldError(gvmerrors.CodeValidation,
			"TLS client certificate and key must be given together", "connection.tls.cert_file", conn.TLS.CertFile)
	}

	if conn.Transport == TransportSSH {
		if conn.SSH.Username == "" {
			return gvmerrors.ErrConfigMissing("connection.ssh.username")
		}
		if conn.SSH.Password == "" && conn.SSH.KeyFile == "" {
			return gvmerrors.NewConfigFieldError(gvmerrors.CodeValidation,
				"SSH needs a password or a key file", "connection.ssh.password", nil)
		}
		if conn.SSH.Subsystem == "" && conn.SSH.Command == "" {
			return gvmerrors.ErrConfigMissing("connection.ssh.command")
		}
	}

	if conn.Timeout < 0 {
		return gvmerrors.ErrConfigInvalid("connection.timeout", conn.Timeout)
	}
	if conn.ReadBufferSize <= 0 {
		return gvmerrors.ErrConfigInvalid("connection.read_buffer_size", conn.ReadBufferSize)
	}
	if conn.MaxResponseSize < 0 {
		return gvmerrors.ErrConfigInvalid("connection.max_response_size", conn.MaxResponseSize)
	}

	if c.Openvasd.URL != "" {
		u, err := url.Parse(c.Openvasd.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return gvmerrors.ErrConfigInvalid("openvasd.url", c.Openvasd.URL)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return gvmerrors.ErrConfigInvalid("logging.level", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return gvmerrors.ErrConfigInvalid("logging.format", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.ListenAddr); err != nil {
			return gvmerrors.ErrConfigInvalid("metrics.listen_addr", c.Metrics.ListenAddr)
		}
	}

	return nil
}

// Address returns the transport address: the socket path for unix
// connections and host:port otherwise.
func (c *ConnectionConfig) Address() string {
	if c.Transport == TransportUnix {
		return c.SocketPath
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
