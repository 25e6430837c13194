package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the full application configuration.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Sites   SitesConfig   `yaml:"sites" mapstructure:"sites"`
	Twitter TwitterConfig `yaml:"twitter" mapstructure:"twitter"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	Rate        float64 `yaml:"rate" mapstructure:"rate"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// SitesConfig configures the source catalog and identity pool.
type SitesConfig struct {
	Catalog    string `yaml:"catalog" mapstructure:"catalog"`
	AgentsFile string `yaml:"agents_file" mapstructure:"agents_file"`
}

// TwitterConfig holds the social feed account and cookie cache location.
type TwitterConfig struct {
	Username   string `yaml:"username" mapstructure:"username"`
	Email      string `yaml:"email" mapstructure:"email"`
	Password   string `yaml:"password" mapstructure:"password"`
	CookieFile string `yaml:"cookie_file" mapstructure:"cookie_file"`
}

// ServerConfig configures the search server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging. File, when set, routes output through a
// rotating log file instead of stderr.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate", 10)
	v.SetDefault("fetch.burst", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("twitter.cookie_file", ".twitter_cookies")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var sink zapcore.WriteSyncer
	if cfg.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, level)
	zap.ReplaceGlobals(zap.New(core))

	return nil
}
