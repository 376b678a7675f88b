package storage

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Backend names accepted in Config.Backend
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// New creates the configured store wrapped with retries. The "none" backend
// returns a nil store, which disables archiving.
func New(config *Config, retry *RetryConfig, logger *logrus.Logger) (DocumentStore, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	var store DocumentStore

	switch strings.ToLower(config.Backend) {
	case BackendNone, "":
		return nil, nil
	case BackendMemory:
		store = NewMemoryStore()
	case BackendLocal:
		local, err := NewLocalStore(config.BasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		store = local
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", config.Backend)
	}

	return NewRetryingStore(store, retry, logger), nil
}
