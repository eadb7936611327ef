package config

import (
	"encoding/hex"
	"fmt"
)

type SecurityConfig interface {
	GetStoreKey() ([]byte, error)
	GetLoginRateLimit() int
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetStoreKey returns the key used to seal persisted session values.
// No key configured means values are stored in the clear.
func (Security) GetStoreKey() ([]byte, error) {
	raw := GetEnv("STORE_KEY", "")
	if raw == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("STORE_KEY must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("STORE_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// GetLoginRateLimit is the number of guest form submissions allowed per minute per client
func (Security) GetLoginRateLimit() int {
	return GetEnvInt("LOGIN_RATE_LIMIT", 20)
}
