// Package cli provides the command-line interface of gvmclient.
// It implements the Cobra command tree for talking to the manager daemon
// over its XML protocol and to the scanner daemon over HTTP.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anstrom/gvmclient/internal/config"
	"github.com/anstrom/gvmclient/internal/logging"
)

const (
	envPrefix         = "GVMCLI"
	defaultConfigFile = "gvmcli.yaml"
)

var (
	cfgFile     string
	verbose     bool
	metricsAddr string
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gvmcli",
	Short: "Vulnerability manager client",
	Long: `gvmcli talks to a vulnerability manager over its XML command protocol,
through a UNIX socket, TLS or an SSH session, and to the scanner daemon
over its HTTP API.`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./"+defaultConfigFile+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")

	flags.String("transport", "", "manager transport: unix, tls or ssh")
	flags.String("socket", "", "manager UNIX socket path")
	flags.String("host", "", "manager host for tls and ssh transports")
	flags.Int("port", 0, "manager port for tls and ssh transports")
	flags.Duration("timeout", 0, "timeout of one request")
	flags.StringP("username", "u", "", "manager user name")
	flags.String("scanner-url", "", "scanner daemon base URL")

	bindFlags()
}

// bindFlags binds the connection flags to their configuration keys.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	bindings := map[string]string{
		"verbose":                "verbose",
		"connection.transport":   "transport",
		"connection.socket_path": "socket",
		"connection.host":        "host",
		"connection.port":        "port",
		"connection.timeout":     "timeout",
		"credentials.username":   "username",
		"openvasd.url":           "scanner-url",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("gvmcli")
	}

	// Read in environment variables that match, e.g. GVMCLI_CREDENTIALS_PASSWORD
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	// Initialize structured logging after config is loaded
	initLogging()
}

// getConfigFilePath returns the config file in use, or the default name.
func getConfigFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return defaultConfigFile
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	cfg, err := config.Load(getConfigFilePath())
	if err != nil {
		logging.SetDefault(logging.NewDefault())
		return
	}

	level := cfg.Logging.Level
	if verbose {
		level = string(logging.LevelDebug)
	}
	logConfig := logging.Config{
		Level:     logging.LogLevel(level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: level == string(logging.LevelDebug),
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	if verbose {
		logging.Debug("Structured logging initialized", "level", level, "format", cfg.Logging.Format)
	}
}
