package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"
)

const (
	DEFAULT_CONFIG_PATH = "/config/config.yaml"

	DEFAULT_LOG_LEVEL    = "info"
	DEFAULT_SERVER_PORT  = 8080
	DEFAULT_WEBHOOK_PATH = "/webhook"
)

var logLevel *slog.LevelVar

// Initialize the logger
func init() {
	logLevel = &slog.LevelVar{}
	opts := slog.HandlerOptions{
		Level: logLevel,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &opts))
	slog.SetDefault(logger)
}

type Config struct {
	LogLevel string        `json:"logLevel,omitempty"`
	Server   ServerConfig  `json:"server,omitempty"`
	Webhook  WebhookConfig `json:"webhook"`
}

type ServerConfig struct {
	Port int       `json:"port,omitempty"`
	SSL  SSLConfig `json:"ssl,omitempty"`
}

type SSLConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Cert    string `json:"cert,omitempty"`
	Key     string `json:"key,omitempty"`
}

type WebhookConfig struct {
	// The shared secret used by the sender to sign requests.
	AuthToken string `json:"authToken"`
	// Scheme and host the sender used to reach this server, e.g. when running behind a proxy.
	// Example: https://hooks.example.com
	PublicURL string `json:"publicURL,omitempty"`
	// Path under which webhooks are received.
	Path string `json:"path,omitempty"`
}

// Options for loading the configuration
type LoadOptions struct {
	// Path to config file, if empty will use DEFAULT_CONFIG_PATH
	Path string
	// Determines if enviroment variables in the file will be expanded before decoding
	Env bool
	// Optional dotenv file to load into the environment before expanding variables
	EnvFile string
	// Override the log level given by the config
	LogLevel string
}

// Returns a Config with default values set
func DefaultConfig() Config {
	return Config{
		LogLevel: DEFAULT_LOG_LEVEL,
		Server: ServerConfig{
			Port: DEFAULT_SERVER_PORT,
		},
		Webhook: WebhookConfig{
			Path: DEFAULT_WEBHOOK_PATH,
		},
	}
}

// Loads config from file, returns error if config is invalid
func LoadConfig(opts LoadOptions) (Config, error) {
	if opts.EnvFile != "" {
		err := godotenv.Load(opts.EnvFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to load env file '%s': %w", opts.EnvFile, err)
		}
	}

	c, err := loadConfigFile(opts.Path, opts.Env)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load configuration file '%s': %w", opts.Path, err)
	}

	level := c.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	err = setLogLevel(level)
	if err != nil {
		return Config{}, fmt.Errorf("failed to set log level to '%s': %w", level, err)
	}

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate the config, returns an error describing the first problem found
func (c Config) Validate() error {
	if c.Server.SSL.Enabled && (c.Server.SSL.Cert == "" || c.Server.SSL.Key == "") {
		return fmt.Errorf("incomplete SSL configuration: cert and key must be set if SSL is enabled")
	}

	if c.Webhook.AuthToken == "" {
		return fmt.Errorf("webhook auth token must be set in the configuration")
	}

	if c.Webhook.PublicURL != "" && !strings.HasPrefix(c.Webhook.PublicURL, "http://") && !strings.HasPrefix(c.Webhook.PublicURL, "https://") {
		return fmt.Errorf("webhook public url '%s' must start with http:// or https://", c.Webhook.PublicURL)
	}

	if !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("webhook path '%s' must start with '/'", c.Webhook.Path)
	}

	return nil
}

func loadConfigFile(path string, env bool) (Config, error) {
	c := DefaultConfig()

	p := path
	if p == "" {
		p = DEFAULT_CONFIG_PATH
	}

	// #nosec G304 -- Local users can decide on their file path themselves.
	f, err := os.ReadFile(p)
	if path == "" && os.IsNotExist(err) {
		slog.Info("No config file specified and default file does not exist, falling back to default values.", slog.String("default-path", p))
		return c, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("failed to read config file '%s': %w", p, err)
	}

	if env {
		f = []byte(os.ExpandEnv(string(f)))
	}

	err = yaml.Unmarshal(f, &c)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config file '%s': %w", p, err)
	}

	return c, nil
}

// Parse a given string and set the resulting log level
func setLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		return fmt.Errorf("invalid log level '%s'", level)
	}
	return nil
}
