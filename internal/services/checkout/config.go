// File: internal/services/checkout/config.go
package checkout

import (
	"fmt"
	"strings"
)

const fallbackOrigin = "https://revivarimagem.lovable.app"

type Config struct {
	SecretKey     string
	DefaultOrigin string
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return NewConfigError(MsgMissingSecretKey)
	}
	if c.DefaultOrigin != "" && !strings.HasPrefix(c.DefaultOrigin, "http") {
		return NewConfigError(fmt.Sprintf("invalid default origin %q", c.DefaultOrigin))
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{DefaultOrigin: fallbackOrigin}
}
