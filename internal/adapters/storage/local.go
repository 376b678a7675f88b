package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	metadataSuffix = ".meta"
	tempSuffix     = ".tmp"
)

// LocalStore implements DocumentStore on the local filesystem or an EFS mount
type LocalStore struct {
	basePath string
}

// sidecar is written next to a document when it has a content type or metadata
type sidecar struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewLocalStore creates the base directory if needed
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		return nil, NewStorageError("NewLocalStore", "", fmt.Errorf("base path cannot be empty"), false)
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, NewStorageError("NewLocalStore", "", err, false)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("NewLocalStore", "", err, false)
	}

	return &LocalStore{basePath: absPath}, nil
}

// Put writes the document through a temp file and rename so readers never
// see a partial document
func (l *LocalStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}
	if opts == nil {
		opts = &PutOptions{}
	}

	path := l.path(key)

	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return NewStorageError("Put", key, ErrObjectExists, false)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return NewStorageError("Put", key, err, true)
	}

	tempPath := path + tempSuffix
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return NewStorageError("Put", key, err, true)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return NewStorageError("Put", key, err, true)
	}

	if opts.ContentType != "" || len(opts.Metadata) > 0 {
		meta, err := json.Marshal(sidecar{ContentType: opts.ContentType, Metadata: opts.Metadata})
		if err != nil {
			return NewStorageError("Put", key, err, false)
		}
		if err := os.WriteFile(path+metadataSuffix, meta, 0644); err != nil {
			return NewStorageError("Put", key, err, true)
		}
	} else {
		os.Remove(path + metadataSuffix)
	}

	return nil
}

// Get reads a document
func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Get", key, err, false)
	}

	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageError("Get", key, ErrObjectNotFound, false)
		}
		return nil, NewStorageError("Get", key, err, true)
	}

	return data, nil
}

// Stat returns the document's size, type and metadata
func (l *LocalStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Stat", key, err, false)
	}

	stat, err := os.Stat(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageError("Stat", key, ErrObjectNotFound, false)
		}
		return nil, NewStorageError("Stat", key, err, true)
	}

	info := l.info(key, stat)
	return &info, nil
}

// List walks the store and returns documents under prefix
func (l *LocalStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects := []ObjectInfo{}

	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metadataSuffix) || strings.HasSuffix(path, tempSuffix) {
			return nil
		}

		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		stat, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, l.info(key, stat))
		return nil
	})
	if err != nil {
		return nil, NewStorageError("List", prefix, err, true)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Delete removes a document and its sidecar
func (l *LocalStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}

	path := l.path(key)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewStorageError("Delete", key, ErrObjectNotFound, false)
		}
		return NewStorageError("Delete", key, err, true)
	}

	os.Remove(path + metadataSuffix)
	return nil
}

// Close implements DocumentStore
func (l *LocalStore) Close() error {
	return nil
}

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalStore) info(key string, stat fs.FileInfo) ObjectInfo {
	info := ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentTypeFor(key),
		LastModified: stat.ModTime().UTC(),
		ETag:         fmt.Sprintf("%d-%d", stat.Size(), stat.ModTime().UnixNano()),
	}

	if data, err := os.ReadFile(l.path(key) + metadataSuffix); err == nil {
		var meta sidecar
		if json.Unmarshal(data, &meta) == nil {
			if meta.ContentType != "" {
				info.ContentType = meta.ContentType
			}
			info.Metadata = meta.Metadata
		}
	}

	return info
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
