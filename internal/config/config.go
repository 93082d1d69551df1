package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string      `yaml:"log-level" env-default:"info"`
	HTTPPort          string      `yaml:"http-port" env-default:"9090"`
	Redis             Redis       `yaml:"redis"`
	SQLiteStoragePath string      `yaml:"sqlite-storage-path" env-default:"tictactoe.db"`
	JWTSecretKey      string      `yaml:"jwt-secret-key"`
	GoogleOAuth       GoogleOAuth `yaml:"google-oauth"`
	Oracle            Oracle      `yaml:"oracle"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type GoogleOAuth struct {
	ClientID     string `yaml:"client-id" env-default:""`
	ClientSecret string `yaml:"client-secret" env-default:""`
	RedirectURL  string `yaml:"redirect-url" env-default:""`
}

// Oracle configures the external language-model move service.
type Oracle struct {
	BaseURL        string  `yaml:"base-url" env-default:"https://api.openai.com"`
	APIKey         string  `yaml:"api-key" env:"ORACLE_API_KEY"`
	Model          string  `yaml:"model" env-default:"gpt-4o-mini"`
	TimeoutSeconds int     `yaml:"timeout-seconds" env-default:"30"`
	TempEasy       float64 `yaml:"temperature-easy" env-default:"1.2"`
	TempMedium     float64 `yaml:"temperature-medium" env-default:"0.7"`
	TempHard       float64 `yaml:"temperature-hard" env-default:"0.0"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Oracle) Timeout() time.Duration {
	return time.Duration(that.TimeoutSeconds) * time.Second
}
