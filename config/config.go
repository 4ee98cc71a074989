package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey       string        `mapstructure:"secretKey"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessTokenTTL  time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `mapstructure:"refreshTokenTTL"`
}

type LLMConfig struct {
	APIKey      string  `mapstructure:"apiKey"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type GeocoderConfig struct {
	BaseURL           string        `mapstructure:"baseURL"`
	UserAgent         string        `mapstructure:"userAgent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"maxAttempts"`
	RetryDelay        time.Duration `mapstructure:"retryDelay"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	CacheTTL          time.Duration `mapstructure:"cacheTTL"`
	Concurrency       int           `mapstructure:"concurrency"`
}

type ClusteringConfig struct {
	Seed          uint64  `mapstructure:"seed"`
	Runs          int     `mapstructure:"runs"`
	MaxIterations int     `mapstructure:"maxIterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Dotenv       string `mapstructure:"dotenv"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT           JWTConfig        `mapstructure:"jwt"`
	LLM           LLMConfig        `mapstructure:"llm"`
	Geocoder      GeocoderConfig   `mapstructure:"geocoder"`
	Clustering    ClusteringConfig `mapstructure:"clustering"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	RateLimit struct {
		RequestsPerMinute int `mapstructure:"requestsPerMinute"`
	} `mapstructure:"rateLimit"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// PLANNER_LLM_APIKEY overrides llm.apiKey, and so on.
	v.SetEnvPrefix("planner")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvSecrets(&config)
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// applyEnvSecrets fills secrets from the conventional variable names used in .env files.
func applyEnvSecrets(cfg *Config) {
	if key := os.Getenv("GOOGLE_GEMINI_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		cfg.JWT.SecretKey = secret
	}
	if pw := os.Getenv("POSTGRES_PASSWORD"); pw != "" {
		cfg.Repositories.Postgres.Password = pw
	}
}
