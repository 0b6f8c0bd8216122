package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all node runner configuration
type Config struct {
	HTTPAddress string

	QiniuAPIKey  string
	QiniuBaseURL string

	// PollDeadline caps every long-running job. Zero keeps the per-job defaults.
	PollDeadline time.Duration

	// Credentials maps a credential id to either a plain payload ({"api_key": ...}) or an
	// encrypted credential sealed for this executor.
	Credentials map[string]any

	ExecutorID          string
	X25519PrivateKey    string
	APISigningPublicKey string // Ed25519 public key; signature checks are off when empty
}

type LoadOpts struct {
	// ConfigFile overrides the config file search.
	ConfigFile string
	// RequireAPIKey fails loading when no credential of any kind is configured.
	RequireAPIKey bool
}

// Load reads configuration from the config file, then environment variables, then defaults.
func Load(opts LoadOpts) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":         "HTTP_ADDRESS",
		"QiniuAPIKey":         "QINIU_AI_API_KEY",
		"QiniuBaseURL":        "QINIU_AI_BASE_URL",
		"PollDeadline":        "POLL_DEADLINE",
		"ExecutorID":          "EXECUTOR_ID",
		"X25519PrivateKey":    "EXECUTOR_X25519_PRIVATE_KEY",
		"APISigningPublicKey": "API_SIGNING_PUBLIC_KEY",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("qiniu_node")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.qiniu-node")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config, opts); err != nil {
		return nil, err
	}

	log.Debug().
		Str("http_address", config.HTTPAddress).
		Str("qiniu_base_url", config.QiniuBaseURL).
		Int("credentials", len(config.Credentials)).
		Bool("signature_checks", config.APISigningPublicKey != "").
		Msg("Config loaded")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8081")
	v.SetDefault("QiniuBaseURL", "https://api.qnaigc.com/v1")
	v.SetDefault("PollDeadline", time.Duration(0))
}

// DefaultCredential is the credential served when a request names none.
func (c *Config) DefaultCredential() map[string]any {
	if c.QiniuAPIKey == "" {
		return nil
	}

	return map[string]any{
		"api_key":  c.QiniuAPIKey,
		"base_url": c.QiniuBaseURL,
	}
}

func validateConfig(config *Config, opts LoadOpts) error {
	var missingVars []string

	if opts.RequireAPIKey && config.QiniuAPIKey == "" && len(config.Credentials) == 0 {
		missingVars = append(missingVars, "QINIU_AI_API_KEY")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if config.PollDeadline < 0 {
		return fmt.Errorf("POLL_DEADLINE must not be negative, got %s", config.PollDeadline)
	}

	if config.APISigningPublicKey != "" {
		if _, err := base64.StdEncoding.DecodeString(config.APISigningPublicKey); err != nil {
			return fmt.Errorf("API_SIGNING_PUBLIC_KEY is not valid base64: %w", err)
		}
	}

	return nil
}
