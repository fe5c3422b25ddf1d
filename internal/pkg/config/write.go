package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 默认配置文件路径（可执行文件旁的 config/config.yaml）
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// WriteFile 把配置写回 YAML 文件（初始化向导 / 配置迁移用）
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"storage": map[string]any{
			"db_path":    cfg.Storage.DBPath,
			"index_path": cfg.Storage.IndexPath,
		},
		"ai": map[string]any{
			"openai": map[string]any{
				"api_key":  cfg.AI.OpenAI.APIKey,
				"base_url": cfg.AI.OpenAI.BaseURL,
				"model":    cfg.AI.OpenAI.Model,
			},
			"embedding": map[string]any{
				"api_key":  cfg.AI.Embedding.APIKey,
				"base_url": cfg.AI.Embedding.BaseURL,
				"model":    cfg.AI.Embedding.Model,
			},
		},
		"rubric": map[string]any{
			"path":  cfg.Rubric.Path,
			"watch": cfg.Rubric.Watch,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
