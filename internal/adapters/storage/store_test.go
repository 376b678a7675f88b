package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// stores returns every backend so each test runs against both
func stores(t *testing.T) map[string]DocumentStore {
	t.Helper()

	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() failed: %v", err)
	}

	return map[string]DocumentStore{
		"local":  local,
		"memory": NewMemoryStore(),
	}
}

func TestDocumentStore_PutGet(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := "tenants/t1/invoices/INV-000001.json"
			data := []byte(`{"invoice_number":"INV-000001"}`)

			opts := &PutOptions{
				ContentType: "application/json",
				Metadata:    map[string]string{"invoice_id": "abc"},
			}
			if err := store.Put(ctx, key, data, opts); err != nil {
				t.Fatalf("Put() failed: %v", err)
			}

			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if string(got) != string(data) {
				t.Errorf("Expected %s, got %s", data, got)
			}

			info, err := store.Stat(ctx, key)
			if err != nil {
				t.Fatalf("Stat() failed: %v", err)
			}
			if info.Size != int64(len(data)) {
				t.Errorf("Expected size %d, got %d", len(data), info.Size)
			}
			if info.ContentType != "application/json" {
				t.Errorf("Expected application/json, got %s", info.ContentType)
			}
			if info.Metadata["invoice_id"] != "abc" {
				t.Errorf("Expected metadata invoice_id=abc, got %v", info.Metadata)
			}

			// write-once unless Overwrite is set
			err = store.Put(ctx, key, []byte("changed"), &PutOptions{})
			if !IsAlreadyExists(err) {
				t.Errorf("Expected already exists error, got %v", err)
			}
			if err := store.Put(ctx, key, []byte("changed"), &PutOptions{Overwrite: true}); err != nil {
				t.Fatalf("Put() with overwrite failed: %v", err)
			}
			got, _ = store.Get(ctx, key)
			if string(got) != "changed" {
				t.Errorf("Expected overwritten content, got %s", got)
			}
		})
	}
}

func TestDocumentStore_NotFound(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "missing.json"); !IsNotFound(err) {
				t.Errorf("Expected not found from Get, got %v", err)
			}
			if _, err := store.Stat(ctx, "missing.json"); !IsNotFound(err) {
				t.Errorf("Expected not found from Stat, got %v", err)
			}
			if err := store.Delete(ctx, "missing.json"); !IsNotFound(err) {
				t.Errorf("Expected not found from Delete, got %v", err)
			}
		})
	}
}

func TestDocumentStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()

	keys := []string{"", "/etc/passwd", "../outside.json", "tenants/../../x", "a//b", "./a"}

	for name, store := range stores(t) {
		for _, key := range keys {
			t.Run(name+"/"+key, func(t *testing.T) {
				err := store.Put(ctx, key, []byte("x"), nil)
				if err == nil {
					t.Fatal("Expected error for invalid key")
				}
				if IsRetryable(err) {
					t.Error("Expected invalid key error to be permanent")
				}
			})
		}
	}
}

func TestDocumentStore_ListDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			keys := []string{
				"tenants/t2/invoices/INV-000002.json",
				"tenants/t1/invoices/INV-000002.json",
				"tenants/t1/invoices/INV-000001.json",
			}
			for _, key := range keys {
				if err := store.Put(ctx, key, []byte("{}"), &PutOptions{Metadata: map[string]string{"k": "v"}}); err != nil {
					t.Fatalf("Put(%s) failed: %v", key, err)
				}
			}

			objects, err := store.List(ctx, "tenants/t1/")
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			if len(objects) != 2 {
				t.Fatalf("Expected 2 documents, got %d", len(objects))
			}
			if objects[0].Key != "tenants/t1/invoices/INV-000001.json" {
				t.Errorf("Expected ordered keys, got %s first", objects[0].Key)
			}

			if err := store.Delete(ctx, objects[0].Key); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}

			objects, _ = store.List(ctx, "")
			if len(objects) != 2 {
				t.Errorf("Expected 2 documents after delete, got %d", len(objects))
			}
		})
	}
}

func TestLocalStore_NoSidecarsListed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() failed: %v", err)
	}

	if err := store.Put(ctx, "a.json", []byte("{}"), &PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.json"+metadataSuffix)); err != nil {
		t.Errorf("Expected metadata sidecar: %v", err)
	}

	objects, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "a.json" {
		t.Errorf("Expected only a.json, got %+v", objects)
	}

	if err := store.Delete(ctx, "a.json"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.json"+metadataSuffix)); !os.IsNotExist(err) {
		t.Error("Expected sidecar to be removed with the document")
	}
}

func TestNewLocalStore_EmptyPath(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Error("Expected error for empty base path")
	}
}
