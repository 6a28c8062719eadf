// Package config loads the application configuration from config.yml, with
// an embedded fallback so the binary runs without any file present. API
// keys stay out of here; they come from the environment.
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
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Data struct {
		FixturesDir string `mapstructure:"fixturesDir"`
		CacheDir    string `mapstructure:"cacheDir"`
		RawDir      string `mapstructure:"rawDir"`
	} `mapstructure:"data"`
	LLM struct {
		Model string `mapstructure:"model"`
	} `mapstructure:"llm"`
	Upstream struct {
		NPSBaseURL       string `mapstructure:"npsBaseURL"`
		WeatherBaseURL   string `mapstructure:"weatherBaseURL"`
		ElevationBaseURL string `mapstructure:"elevationBaseURL"`
	} `mapstructure:"upstream"`
	Ops struct {
		APIKey string `mapstructure:"apiKey"`
	} `mapstructure:"ops"`
}

// InitConfig reads config.yml from the usual locations, falling back to the
// embedded copy.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("reading embedded config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return config, nil
}
