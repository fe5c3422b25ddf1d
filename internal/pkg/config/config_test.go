package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// 空目录下没有配置文件，走默认值
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWD) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Name != "tutor" {
		t.Fatalf("App.Name = %q", cfg.App.Name)
	}
	if cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Fatalf("OpenAI.Model = %q", cfg.AI.OpenAI.Model)
	}
	if cfg.AI.Embedding.Model != "text-embedding-3-small" {
		t.Fatalf("Embedding.Model = %q", cfg.AI.Embedding.Model)
	}
	if !filepath.IsAbs(cfg.Storage.DBPath) {
		t.Fatalf("DBPath 应解析为绝对路径: %q", cfg.Storage.DBPath)
	}
	if cfg.Storage.IndexPath != "" {
		t.Fatalf("IndexPath 默认应为空: %q", cfg.Storage.IndexPath)
	}
	if cfg.Rubric.Watch {
		t.Fatal("Rubric.Watch 默认应为 false")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  log_level: debug
storage:
  db_path: /tmp/tutor-test.db
ai:
  openai:
    api_key: sk-or-v1-test
    model: gpt-4o-mini
rubric:
  path: /tmp/Rubric.md
  watch: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.App.LogLevel)
	}
	if cfg.Storage.DBPath != "/tmp/tutor-test.db" {
		t.Fatalf("DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.AI.OpenAI.APIKey != "sk-or-v1-test" {
		t.Fatalf("APIKey = %q", cfg.AI.OpenAI.APIKey)
	}
	if cfg.AI.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q", cfg.AI.OpenAI.Model)
	}
	if !cfg.Rubric.Watch {
		t.Fatal("Rubric.Watch 应为 true")
	}
}

func TestLoadExpandsEnvPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ai:
  openai:
    api_key: ${TEST_TUTOR_KEY}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置: %v", err)
	}
	t.Setenv("TEST_TUTOR_KEY", "sk-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.OpenAI.APIKey != "sk-from-env" {
		t.Fatalf("APIKey = %q, want sk-from-env", cfg.AI.OpenAI.APIKey)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_TUTOR_VAR", "value")

	if got := expandEnv("${TEST_TUTOR_VAR}"); got != "value" {
		t.Fatalf("expandEnv = %q", got)
	}
	if got := expandEnv("literal"); got != "literal" {
		t.Fatalf("非占位符应原样返回: %q", got)
	}
	if got := expandEnv("${MISSING_TUTOR_VAR}"); got != "" {
		t.Fatalf("未设置的变量应为空串: %q", got)
	}
}
