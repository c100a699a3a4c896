package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/anstrom/gvmclient/internal/client"
	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/logging"
	"github.com/anstrom/gvmclient/internal/metrics"
	"github.com/anstrom/gvmclient/internal/openvasd"
	"github.com/anstrom/gvmclient/internal/protocol"
)

// Exit codes
const (
	exitError  = 1
	exitStatus = 2
	exitConfig = 3
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// passwordPrompt asks for the manager password. Tests replace it.
var passwordPrompt = readPassword

// loadConfig loads the config file and applies flag and environment
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigFilePath())
	if err != nil {
		return nil, err
	}

	overrideString(&cfg.Connection.Transport, "connection.transport")
	overrideString(&cfg.Connection.SocketPath, "connection.socket_path")
	overrideString(&cfg.Connection.Host, "connection.host")
	overrideString(&cfg.Credentials.Username, "credentials.username")
	overrideString(&cfg.Credentials.Password, "credentials.password")
	overrideString(&cfg.Openvasd.URL, "openvasd.url")
	overrideString(&cfg.Openvasd.APIKey, "openvasd.api_key")
	if port := viper.GetInt("connection.port"); port != 0 {
		cfg.Connection.Port = port
	}
	if timeout := viper.GetDuration("connection.timeout"); timeout > 0 {
		cfg.Connection.Timeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

// environment carries what every command needs.
type environment struct {
	ctx      context.Context
	cfg      *config.Config
	recorder metrics.Recorder
	stop     func()
}

// withContext returns a copy of e bound to ctx.
func (e *environment) withContext(ctx context.Context) *environment {
	return &environment{ctx: ctx, cfg: e.cfg, recorder: e.recorder, stop: e.stop}
}

func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	addr := metricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.ListenAddr
	}
	recorder, stopMetrics := startMetrics(addr)

	return &environment{
		ctx:      ctx,
		cfg:      cfg,
		recorder: recorder,
		stop: func() {
			stopMetrics()
			cancel()
		},
	}, nil
}

// startMetrics serves Prometheus metrics on addr. An empty addr disables
// the endpoint.
func startMetrics(addr string) (metrics.Recorder, func()) {
	if addr == "" {
		return metrics.Noop{}, func() {}
	}

	pm := metrics.NewPrometheusMetrics()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.RecoveryHandler()(pm.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorTransport("metrics endpoint failed", addr, err)
		}
	}()
	logging.InfoTransport("serving metrics", addr)

	return pm, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// openManager connects to the manager and, when authenticate is set,
// logs in with the configured credentials.
func openManager(env *environment, authenticate bool) (*client.GMP, error) {
	session, err := client.Open(env.ctx, env.cfg.Connection, client.WithMetrics(env.recorder))
	if err != nil {
		return nil, err
	}
	gmp := client.NewGMP(session)
	if !authenticate {
		return gmp, nil
	}

	creds := env.cfg.Credentials
	if creds.Username == "" {
		_ = session.Close()
		return nil, gvmerrors.ErrConfigMissing("credentials.username")
	}
	if creds.Password == "" {
		creds.Password, err = passwordPrompt(creds.Username)
		if err != nil {
			_ = session.Close()
			return nil, err
		}
		// Later sessions of this run reuse the answer.
		env.cfg.Credentials.Password = creds.Password
	}
	if _, err := gmp.Authenticate(env.ctx, creds.Username, creds.Password); err != nil {
		_ = session.Close()
		return nil, err
	}
	return gmp, nil
}

// withManager runs fn with a connected manager client.
func withManager(cmd *cobra.Command, authenticate bool, fn func(env *environment, gmp *client.GMP) error) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.stop()

	gmp, err := openManager(env, authenticate)
	if err != nil {
		return err
	}
	defer func() { _ = gmp.Session().Close() }()

	return fn(env, gmp)
}

// withScanner runs fn with a scanner daemon client.
func withScanner(cmd *cobra.Command, fn func(ctx context.Context, c *openvasd.Client) error) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.stop()

	c, err := openvasd.NewFromConfig(env.cfg.Openvasd, openvasd.WithMetrics(env.recorder))
	if err != nil {
		return err
	}
	return fn(env.ctx, c)
}

func readPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", gvmerrors.ErrConfigMissing("credentials.password")
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var statusErr *protocol.StatusError
	var cfgErr *gvmerrors.ConfigError
	switch {
	case errors.As(err, &statusErr):
		return exitStatus
	case errors.As(err, &cfgErr):
		return exitConfig
	default:
		return exitError
	}
}
