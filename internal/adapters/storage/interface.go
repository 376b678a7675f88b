package storage

import (
	"context"
	"time"
)

// ObjectInfo describes a stored document
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PutOptions controls how a document is written
type PutOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	// Overwrite replaces an existing document instead of failing with ErrObjectExists
	Overwrite bool `json:"overwrite,omitempty"`
}

// DocumentStore keeps issued documents under slash-separated keys such as
// "tenants/<id>/invoices/INV-000001.json"
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, opts *PutOptions) error
	Get(ctx context.Context, key string) ([]byte, error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// List returns the documents whose key starts with prefix, ordered by key
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a DocumentStore backend
type Config struct {
	Backend  string `json:"backend" mapstructure:"backend"`     // "local", "memory" or "none"
	BasePath string `json:"base_path" mapstructure:"base_path"` // local backend root
}
