package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/jobnado/internal/ai/gemini"
	"github.com/spigell/jobnado/internal/mailer"
)

const (
	app       = "jobnado"
	envPrefix = "JOBNADO"
)

type Config struct {
	Gemini   *GeminiConfig  `mapstructure:"gemini"`
	Analysis *StageConfig   `mapstructure:"analysis"`
	Search   *StageConfig   `mapstructure:"search"`
	Alerts   *AlertsConfig  `mapstructure:"alerts"`
	Resend   *ResendConfig  `mapstructure:"resend"`
	Session  *SessionConfig `mapstructure:"session"`
	Server   *ServerConfig  `mapstructure:"server"`
}

type GeminiConfig struct {
	APIKey            string  `mapstructure:"api-key" json:"-"`
	APIKeyFile        string  `mapstructure:"api-key-file"`
	Model             string  `mapstructure:"model"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	MaxLogLength      int     `mapstructure:"max-log-length"`
}

type StageConfig struct {
	Retry *RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	Attempts  int           `mapstructure:"attempts"`
	Strategy  string        `mapstructure:"strategy"`
	BaseDelay time.Duration `mapstructure:"base-delay"`
}

type AlertsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Store       string `mapstructure:"store"`
	DatabaseURL string `mapstructure:"database-url" json:"-"`
	SQLitePath  string `mapstructure:"sqlite-path"`
	Schedule    string `mapstructure:"schedule"`
	From        string `mapstructure:"from"`
}

type ResendConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type SessionConfig struct {
	Store    string        `mapstructure:"store"`
	RedisURL string        `mapstructure:"redis-url" json:"-"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Listen    string  `mapstructure:"listen"`
	RateLimit float64 `mapstructure:"rate-limit"`
	Burst     int     `mapstructure:"burst"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobnado analyzes a CV, finds live job openings and keeps job alerts running",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	_ = godotenv.Load()

	setDefaults(viper.GetViper())

	envBindings := map[string]string{
		"gemini.api-key":      "GEMINI_API_KEY",
		"gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"resend.api-key":      "RESEND_API_KEY",
		"alerts.database-url": "DATABASE_URL",
		"session.redis-url":   "REDIS_URL",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, envPrefix+"_"+envName(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobnado.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.api-key", "")
	v.SetDefault("gemini.api-key-file", "")
	v.SetDefault("gemini.model", gemini.DefaultModel)
	v.SetDefault("gemini.requests-per-second", 0)
	v.SetDefault("gemini.max-log-length", 200)

	for _, stage := range []string{"analysis", "search"} {
		v.SetDefault(stage+".retry.attempts", 3)
		v.SetDefault(stage+".retry.strategy", "linear")
		v.SetDefault(stage+".retry.base-delay", time.Second)
	}

	v.SetDefault("alerts.enabled", true)
	v.SetDefault("alerts.store", "memory")
	v.SetDefault("alerts.database-url", "")
	v.SetDefault("alerts.sqlite-path", app+".db")
	v.SetDefault("alerts.schedule", "@daily")
	v.SetDefault("alerts.from", mailer.DefaultFrom)

	v.SetDefault("resend.api-key", "")
	v.SetDefault("resend.api-key-file", "")
	v.SetDefault("resend.base-url", mailer.DefaultBaseURL)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redis-url", "")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.rate-limit", 0)
	v.SetDefault("server.burst", 10)
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was requested explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
