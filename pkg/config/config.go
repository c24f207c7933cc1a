package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Ranking RankingConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        int
	WriteTimeout       int
	BodyLimit          int
	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxQueryLength     int
	IsDevelopment      bool
}

type DatasetConfig struct {
	Path           string
	Latin1Fallback bool
}

type RankingConfig struct {
	DefaultK    int
	MaxK        int
	MaxFeatures int
	MaxNGram    int
	Stemming    bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/codesellers")

	v.SetEnvPrefix("CODESELLERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return errors.New("dataset.path is required")
	}
	if c.Ranking.DefaultK <= 0 {
		return fmt.Errorf("ranking.defaultK must be positive, got %d", c.Ranking.DefaultK)
	}
	if c.Ranking.MaxK < c.Ranking.DefaultK {
		return fmt.Errorf("ranking.maxK (%d) must be >= ranking.defaultK (%d)", c.Ranking.MaxK, c.Ranking.DefaultK)
	}
	if c.Ranking.MaxFeatures <= 0 {
		return fmt.Errorf("ranking.maxFeatures must be positive, got %d", c.Ranking.MaxFeatures)
	}
	if c.Ranking.MaxNGram < 1 {
		return fmt.Errorf("ranking.maxNGram must be >= 1, got %d", c.Ranking.MaxNGram)
	}
	return nil
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 120)
	v.SetDefault("server.bodyLimit", 1048576)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.rateLimitPerMinute", 120)
	v.SetDefault("server.maxQueryLength", 2000)
	v.SetDefault("server.isDevelopment", true)

	v.SetDefault("dataset.path", "./data/vendas.csv")
	v.SetDefault("dataset.latin1Fallback", true)

	v.SetDefault("ranking.defaultK", 10)
	v.SetDefault("ranking.maxK", 100)
	v.SetDefault("ranking.maxFeatures", 1000)
	v.SetDefault("ranking.maxNGram", 2)
	v.SetDefault("ranking.stemming", false)

	v.SetDefault("sqlite.path", "./data/codesellers.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttlSec", 600)

	v.SetDefault("llm.baseURL", "http://localhost:11434/v1")
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.maxTokens", 1024)
	v.SetDefault("llm.timeoutSec", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
