package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort        string        `mapstructure:"HTTPPort"`
		MetricsPort     string        `mapstructure:"metricsPort"`
		Timeout         time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
		MinRequestChars int           `mapstructure:"minRequestChars"`
	} `mapstructure:"server"`
	Generator struct {
		Provider  string        `mapstructure:"provider"` // "openai-compat" or "gemini"
		BaseURL   string        `mapstructure:"baseURL"`
		Model     string        `mapstructure:"model"`
		APIKeyEnv string        `mapstructure:"apiKeyEnv"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"generator"`
	Providers struct {
		Weather struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"weather"`
		Matrix struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"matrix"`
		SnapshotTTL time.Duration `mapstructure:"snapshotTTL"`
	} `mapstructure:"providers"`
	Catalog struct {
		// Source selects where attractions come from: "memory" or "postgres".
		Source string `mapstructure:"source"`
	} `mapstructure:"catalog"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Planner struct {
		CandidateCap       int           `mapstructure:"candidateCap"`
		InflightBucket     time.Duration `mapstructure:"inflightBucket"`
		InflightTTL        time.Duration `mapstructure:"inflightTTL"`
		DefaultTravelMin   int           `mapstructure:"defaultTravelMinutes"`
		DefaultVisitMin    int           `mapstructure:"defaultVisitMinutes"`
		DefaultStartTime   string        `mapstructure:"defaultStartTime"`
		FallbackMinVisits  int           `mapstructure:"fallbackMinVisits"`
	} `mapstructure:"planner"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}
