package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestConfig(t *testing.T) (*ConnectionConfig, func()) {
	tempDir, err := os.MkdirTemp("", "database_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := DefaultConnectionConfig()
	config.DatabasePath = filepath.Join(tempDir, "test.db")
	config.Logger = logger

	return config, func() { os.RemoveAll(tempDir) }
}

func TestConnectionManager_ConnectRunsMigrations(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	cm := NewConnectionManager(config)
	ctx := context.Background()

	if err := cm.Connect(ctx); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	if err := cm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() failed: %v", err)
	}

	migrator := cm.GetMigrationManager()
	if migrator == nil {
		t.Fatal("Expected migration manager, got nil")
	}

	if err := migrator.ValidateSchema(); err != nil {
		t.Errorf("ValidateSchema() failed: %v", err)
	}

	status, err := migrator.GetMigrationStatus()
	if err != nil {
		t.Fatalf("GetMigrationStatus() failed: %v", err)
	}
	if status.Version != 1 {
		t.Errorf("Expected schema version 1, got %d", status.Version)
	}
	if status.Dirty {
		t.Error("Expected clean migration state")
	}
}

func TestConnectionManager_ConnectTwice(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	cm := NewConnectionManager(config)
	ctx := context.Background()

	if err := cm.Connect(ctx); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	if err := cm.Connect(ctx); err == nil {
		t.Error("Expected error on second Connect()")
	}
}

func TestMigrationManager_RunMigrationsIsIdempotent(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	cm := NewConnectionManager(config)
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	if err := cm.GetMigrationManager().RunMigrations(); err != nil {
		t.Errorf("Second RunMigrations() failed: %v", err)
	}
}

func TestMigrationManager_Rollback(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	cm := NewConnectionManager(config)
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	migrator := cm.GetMigrationManager()
	if err := migrator.RollbackMigration(); err != nil {
		t.Fatalf("RollbackMigration() failed: %v", err)
	}

	if err := migrator.ValidateSchema(); err == nil {
		t.Error("Expected schema validation to fail after rollback")
	}

	if err := migrator.RollbackMigration(); err == nil {
		t.Error("Expected error when nothing is left to roll back")
	}
}

func TestMigrationManager_FileSource(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	migrationsPath, err := filepath.Abs(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("Failed to resolve migrations path: %v", err)
	}
	config.MigrationsPath = migrationsPath

	cm := NewConnectionManager(config)
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() with file migrations failed: %v", err)
	}
	defer cm.Close()

	if err := cm.GetMigrationManager().ValidateSchema(); err != nil {
		t.Errorf("ValidateSchema() failed: %v", err)
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	cm := NewConnectionManager(nil)
	if err := cm.HealthCheck(context.Background()); err == nil {
		t.Error("Expected error for unconnected manager")
	}
	if cm.GetMigrationManager() != nil {
		t.Error("Expected nil migration manager before Connect()")
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		busyTimeout time.Duration
		want        string
	}{
		{
			name:        "file database",
			path:        "/data/invoices.db",
			busyTimeout: 5 * time.Second,
			want:        "/data/invoices.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000",
		},
		{
			name: "memory database",
			path: ":memory:",
			want: ":memory:?_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDSN(tt.path, tt.busyTimeout); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
