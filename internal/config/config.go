package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetCitySearchRate() float64
}

type mainConfig struct {
	EnvVars
	API
	Security
}

// New returns the environment backed configuration. A .env file in the working
// directory is loaded first; variables already set in the environment win.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// Load is New with an explicit list of dotenv files, missing files are an error.
func Load(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, err
		}
	}
	return mainConfig{}, nil
}
