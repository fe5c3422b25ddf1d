package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenRouter 兼容 OpenAI 协议；凭证前缀决定走哪个端点
const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterPrefix  = "sk-or-v1-"
)

// OpenAIClient OpenAI 兼容 API 客户端
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIConfig 配置
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIClient 创建客户端。BaseURL 留空时按凭证前缀选择端点：
// sk-or-v1- 开头的 Key 走 OpenRouter，其余走 OpenAI。
func NewOpenAIClient(cfg *OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		if strings.HasPrefix(cfg.APIKey, openRouterPrefix) {
			cfg.BaseURL = openRouterBaseURL
			slog.Info("使用 OpenRouter 端点")
		} else {
			cfg.BaseURL = openAIBaseURL
		}
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat 输出格式约束
type ResponseFormat struct {
	Type string `json:"type"` // json_object
}

// Message 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse 聊天响应
type ChatResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice 选择
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions 单次调用参数
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool // 强制 response_format=json_object
}

// Chat 发送聊天请求
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	req := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("模型 API 错误", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("API 错误: %s", resp.Status)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("无响应内容")
	}

	slog.Debug("模型 API 调用成功",
		"tokens", chatResp.Usage.TotalTokens,
		"model", c.model,
	)

	return chatResp.Choices[0].Message.Content, nil
}

// IsConfigured 检查是否已配置
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Model 返回当前模型名
func (c *OpenAIClient) Model() string {
	return c.model
}

// ChatWithRetry 带重试的聊天请求（指数退避）。
// 推理管线自身从不自动重试——生成式调用不幂等，重试策略交给调用方。
func (c *OpenAIClient) ChatWithRetry(ctx context.Context, messages []Message, opts ChatOptions, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.Chat(ctx, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// 检查是否是可重试错误（网络错误、5xx 错误）
		if !isRetryableError(err) {
			return "", err
		}

		// 指数退避：1s, 2s, 4s...
		backoff := time.Duration(1<<uint(i)) * time.Second
		slog.Warn("API 调用失败，准备重试", "attempt", i+1, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("达到最大重试次数 (%d): %w", maxRetries, lastErr)
}

// isRetryableError 判断是否是可重试错误
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// 网络错误或 5xx 错误可重试
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}
