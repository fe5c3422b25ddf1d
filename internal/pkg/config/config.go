package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Rubric  RubricConfig  `mapstructure:"rubric"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	IndexPath string `mapstructure:"index_path"` // 修正示例向量索引，留空禁用
}

// AIConfig AI 配置
type AIConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
}

// OpenAIConfig 模型配置。BaseURL 留空时按 Key 前缀自动选择
// OpenAI / OpenRouter 端点。
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// EmbeddingConfig 向量化配置（few-shot 语义召回，可选）
type EmbeddingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// RubricConfig 评分细则配置
type RubricConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"` // 监听文件变更自动重载
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("TUTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.AI.OpenAI.APIKey = expandEnv(cfg.AI.OpenAI.APIKey)
	cfg.AI.Embedding.APIKey = expandEnv(cfg.AI.Embedding.APIKey)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Rubric.Path = resolvePath(cfg.Rubric.Path)
	cfg.Storage.IndexPath = resolvePath(cfg.Storage.IndexPath)

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "tutor")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Storage
	v.SetDefault("storage.db_path", "./data/tutor.db")
	v.SetDefault("storage.index_path", "")

	// AI
	v.SetDefault("ai.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("ai.openai.model", "gpt-4o")
	v.SetDefault("ai.embedding.model", "text-embedding-3-small")

	// Rubric
	v.SetDefault("rubric.path", "./docs/Rubric.md")
	v.SetDefault("rubric.watch", false)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
