package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "debug: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not read")
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults not applied: %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 384 {
		t.Errorf("embedding defaults not applied: %+v", cfg.Embedding)
	}
	if cfg.Generation.Provider != "mock" {
		t.Errorf("generation default not applied: %q", cfg.Generation.Provider)
	}
	if cfg.Query.DefaultTopK != 3 || cfg.Query.MaxTopK != 20 || cfg.Query.MaxContextChars != 500 {
		t.Errorf("query defaults not applied: %+v", cfg.Query)
	}
	if cfg.Embedding.IndexType != "memory" {
		t.Errorf("index type default not applied: %q", cfg.Embedding.IndexType)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
embedding:
  provider: openai
  model: text-embedding-3-large
  dimensions: 1024
query:
  default_top_k: 5
watch:
  directory: /tmp/drop
  extensions: [".txt"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server overrides lost: %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Dimensions != 1024 {
		t.Errorf("embedding overrides lost: %+v", cfg.Embedding)
	}
	if cfg.Query.DefaultTopK != 5 {
		t.Errorf("query override lost: %d", cfg.Query.DefaultTopK)
	}
	// Unset sibling fields still default.
	if cfg.Query.MaxTopK != 20 {
		t.Errorf("sibling default lost: %d", cfg.Query.MaxTopK)
	}
	if cfg.Watch.Directory != "/tmp/drop" {
		t.Errorf("watch directory lost: %q", cfg.Watch.Directory)
	}
	if len(cfg.Watch.Extensions) != 1 || cfg.Watch.Extensions[0] != ".txt" {
		t.Errorf("watch extensions lost: %v", cfg.Watch.Extensions)
	}
}

func TestLoadExpandsRelativePaths(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: ./data/documents.db
  vector_index_path: ./data/vectors.idx
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	configDir := filepath.Dir(path)
	want := filepath.Join(configDir, "data", "documents.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("expected %q, got %q", want, cfg.Storage.DatabasePath)
	}
	if !filepath.IsAbs(cfg.Storage.VectorIndexPath) {
		t.Errorf("expected absolute index path, got %q", cfg.Storage.VectorIndexPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
