package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("addr: \":9090\"\ndriver: postgres\ndsn: postgres://localhost/rates\nshutdown_timeout: 30s\n"), 0644)

	c := Default()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Addr != ":9090" {
		t.Errorf("addr: got %q", c.Addr)
	}
	if c.Driver != "postgres" || c.DSN != "postgres://localhost/rates" {
		t.Errorf("driver/dsn: got %q %q", c.Driver, c.DSN)
	}
	if c.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", c.ShutdownTimeout)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("db_path: /var/lib/rates.db\n"), 0644)

	c := Default()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.DBPath != "/var/lib/rates.db" {
		t.Errorf("db path: got %q", c.DBPath)
	}
	if c.Addr != ":8080" || c.Driver != "sqlite" {
		t.Errorf("defaults clobbered: addr %q driver %q", c.Addr, c.Driver)
	}
}

func TestLoadFromFile_BadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("shutdown_timeout: soon\n"), 0644)

	c := Default()
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	c := Default()
	if err := c.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	c = Default()
	c.Driver = "postgres"
	if err := c.Validate(); err == nil {
		t.Error("postgres driver without DSN should fail")
	}

	c = Default()
	c.Driver = "oracle"
	if err := c.Validate(); err == nil {
		t.Error("unknown driver should fail")
	}

	c = Default()
	c.LogFormat = "xml"
	if err := c.Validate(); err == nil {
		t.Error("unknown log format should fail")
	}
}
