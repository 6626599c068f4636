package backend

import (
	"fmt"
	"strings"

	"wallet/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.Backend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s (valid: %s)",
			appConfig.Backend, strings.Join(TypeStrings(), ", "))
	}

	return Config{
		Type:         backendType,
		DBPath:       appConfig.DBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	if c.Type == SQLiteBackend && c.DBPath == "" {
		return fmt.Errorf("database path is required for sqlite backend")
	}

	// AMQP is optional, but a URL without routing makes no sense
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}

	return nil
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{SQLiteBackend, MemoryBackend}
}

// TypeStrings returns all valid backend type strings
func TypeStrings() []string {
	types := Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
