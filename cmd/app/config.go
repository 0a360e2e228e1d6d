package main

import (
	"fmt"
	"strings"

	"poap_quiz_backend/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Quiz     QuizConfig     `yaml:"quiz"`
	Claim    ClaimConfig    `yaml:"claim"`
	Admin    AdminConfig    `yaml:"admin"`
	Poap     PoapConfig     `yaml:"poap"`
	Feedback FeedbackConfig `yaml:"feedback"`

	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type QuizConfig struct {
	TokenTTLMinutes          int `yaml:"tokenTtlMinutes"`
	MinTimePerQuestion       int `yaml:"minTimePerQuestion"`
	DefaultPassingPercentage int `yaml:"defaultPassingPercentage"`
}

type ClaimConfig struct {
	StrictConsistency bool `yaml:"strictConsistency"`
}

type AdminConfig struct {
	Secret string `yaml:"secret"`
}

type PoapConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
}

type FeedbackConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("quiz.tokenTtlMinutes", 60)
	viper.SetDefault("quiz.minTimePerQuestion", 2)
	viper.SetDefault("quiz.defaultPassingPercentage", 75)
	viper.SetDefault("claim.strictConsistency", true)
	viper.SetDefault("poap.baseUrl", "https://api.poap.tech")
	viper.SetDefault("feedback.requestsPerMinute", 30)
	viper.SetDefault("logLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
