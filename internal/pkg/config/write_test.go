package config

import (
	"path/filepath"
	"testing"
)

func TestWriteFileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")

	cfg := &Config{}
	cfg.App.Name = "tutor"
	cfg.App.LogLevel = "debug"
	cfg.Storage.DBPath = "/tmp/tutor-test.db"
	cfg.AI.OpenAI.Model = "gpt-4o-mini"
	cfg.Rubric.Path = "/tmp/Rubric.md"
	cfg.Rubric.Watch = true

	if err := WriteFile(path, cfg); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.App.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", loaded.App.LogLevel)
	}
	if loaded.Storage.DBPath != "/tmp/tutor-test.db" {
		t.Fatalf("DBPath = %q", loaded.Storage.DBPath)
	}
	if loaded.AI.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q", loaded.AI.OpenAI.Model)
	}
	if !loaded.Rubric.Watch {
		t.Fatal("Rubric.Watch 应为 true")
	}
}

func TestWriteFileRejectsNil(t *testing.T) {
	if err := WriteFile(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Fatal("nil 配置应拒绝")
	}
	if err := WriteFile("", &Config{}); err == nil {
		t.Fatal("空路径应拒绝")
	}
}
