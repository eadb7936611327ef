package config

import (
	"strings"
	"time"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the campaign API root without a trailing slash
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:3000/api"), "/")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 30*time.Second)
}

// GetCitySearchRate is the number of location searches per second forwarded to the API
func (API) GetCitySearchRate() float64 {
	return GetEnvFloat("CITY_SEARCH_RATE", 2.5) // one per 400ms
}
