package storage

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig configures retries of transient store failures, e.g. an EFS
// mount that is briefly unavailable after a cold start
type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
	JitterEnabled bool          `json:"jitter_enabled"`
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// WithRetry runs op until it succeeds, fails with a non-retryable error or
// runs out of attempts
func WithRetry(ctx context.Context, config *RetryConfig, op func(ctx context.Context) error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= config.MaxAttempts || !IsRetryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.delay(attempt)):
		}
	}

	return lastErr
}

// delay is InitialDelay * BackoffFactor^(attempt-1), capped at MaxDelay, plus up to 10% jitter
func (c *RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	if c.JitterEnabled {
		d += rand.Float64() * 0.1 * d
	}
	return time.Duration(d)
}

// RetryingStore wraps a DocumentStore with WithRetry
type RetryingStore struct {
	store  DocumentStore
	config *RetryConfig
	logger *logrus.Logger
}

// NewRetryingStore creates a new RetryingStore
func NewRetryingStore(store DocumentStore, config *RetryConfig, logger *logrus.Logger) *RetryingStore {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RetryingStore{store: store, config: config, logger: logger}
}

func (r *RetryingStore) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	attempt := 0
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && IsRetryable(err) && attempt < r.config.MaxAttempts {
			r.logger.WithFields(logrus.Fields{
				"op":      op,
				"key":     key,
				"attempt": attempt,
			}).WithError(err).Warn("Retrying document store operation")
		}
		return err
	})
}

// Put implements DocumentStore
func (r *RetryingStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	return r.do(ctx, "Put", key, func(ctx context.Context) error {
		return r.store.Put(ctx, key, data, opts)
	})
}

// Get implements DocumentStore
func (r *RetryingStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, "Get", key, func(ctx context.Context) error {
		var err error
		data, err = r.store.Get(ctx, key)
		return err
	})
	return data, err
}

// Stat implements DocumentStore
func (r *RetryingStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	var info *ObjectInfo
	err := r.do(ctx, "Stat", key, func(ctx context.Context) error {
		var err error
		info, err = r.store.Stat(ctx, key)
		return err
	})
	return info, err
}

// List implements DocumentStore
func (r *RetryingStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := r.do(ctx, "List", prefix, func(ctx context.Context) error {
		var err error
		objects, err = r.store.List(ctx, prefix)
		return err
	})
	return objects, err
}

// Delete implements DocumentStore
func (r *RetryingStore) Delete(ctx context.Context, key string) error {
	return r.do(ctx, "Delete", key, func(ctx context.Context) error {
		return r.store.Delete(ctx, key)
	})
}

// Close implements DocumentStore
func (r *RetryingStore) Close() error {
	return r.store.Close()
}
