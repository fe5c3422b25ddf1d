package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// EmbeddingClient OpenAI 兼容的向量化客户端（用于修正示例的语义召回）
type EmbeddingClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// EmbeddingConfig 配置
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewEmbeddingClient 创建向量化客户端
func NewEmbeddingClient(cfg *EmbeddingConfig) *EmbeddingClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}

	return &EmbeddingClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage Usage `json:"usage"`
}

// Embed 批量生成文本向量
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("向量化 API 错误", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("API 错误: %s", resp.Status)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	out := make([][]float32, len(texts))
	for _, d := range embResp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}

// IsConfigured 检查是否已配置
func (c *EmbeddingClient) IsConfigured() bool {
	return c.apiKey != ""
}
