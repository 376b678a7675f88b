package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound = errors.New("document not found")
	ErrObjectExists   = errors.New("document already exists")
	ErrInvalidKey     = errors.New("invalid document key")
	ErrUnavailable    = errors.New("document store unavailable")
)

// StorageError represents a failed store operation
type StorageError struct {
	Op        string // e.g. "Put", "Get"
	Key       string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error, retryable bool) *StorageError {
	return &StorageError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsNotFound reports whether err means the document does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAlreadyExists reports whether err means a write-once document exists
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrObjectExists)
}

// IsRetryable reports whether the operation may succeed if repeated
func IsRetryable(err error) bool {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Retryable
	}
	return errors.Is(err, ErrUnavailable)
}

// validateKey rejects empty, absolute and parent-relative keys
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(strings.ReplaceAll(key, "\\", "/"), "/") {
		if segment == "" || segment == "." || segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
