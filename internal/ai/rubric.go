package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrRubricNotFound 评分细则文档缺失。细则是推理的锚点，缺失时推理无法进行。
var ErrRubricNotFound = errors.New("评分细则不存在")

// LoadRubric 读取评分细则全文
func LoadRubric(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRubricNotFound, path)
		}
		return "", fmt.Errorf("读取评分细则失败: %w", err)
	}
	return string(data), nil
}

// RubricSource 评分细则来源：缓存全文，可选地监听文件变更自动重载。
// 生命周期显式：NewRubricSource 初始化一次，Close 停止监听。
type RubricSource struct {
	path    string
	mu      sync.RWMutex
	content string
	version string

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewRubricSource 创建细则来源并完成首次加载
func NewRubricSource(path string) (*RubricSource, error) {
	content, err := LoadRubric(path)
	if err != nil {
		return nil, err
	}

	s := &RubricSource{
		path:     path,
		content:  content,
		version:  extractVersion(content),
		stopChan: make(chan struct{}),
	}
	return s, nil
}

// Content 返回缓存的细则全文
func (s *RubricSource) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Version 返回细则版本号（取自文档首部的 Version: 行，缺省为 1.0）
func (s *RubricSource) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reload 重新读取细则文件
func (s *RubricSource) Reload() error {
	content, err := LoadRubric(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.content = content
	s.version = extractVersion(content)
	s.mu.Unlock()
	slog.Info("评分细则已重载", "path", s.path, "version", s.version)
	return nil
}

// Watch 监听细则文件变更并自动重载（写事件去抖 2 秒）
func (s *RubricSource) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监控器失败: %w", err)
	}
	// 监听目录而非文件本身，编辑器的原子替换会使文件级监听失效
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("添加监控目录失败: %w", err)
	}
	s.watcher = watcher

	go s.watchLoop()
	slog.Info("开始监听评分细则变更", "path", s.path)
	return nil
}

func (s *RubricSource) watchLoop() {
	var lastReload time.Time
	base := filepath.Base(s.path)

	for {
		select {
		case <-s.stopChan:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// 去抖：编辑器保存往往触发多个写事件
			if time.Since(lastReload) < 2*time.Second {
				continue
			}
			lastReload = time.Now()
			if err := s.Reload(); err != nil {
				slog.Warn("重载评分细则失败", "error", err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("细则监听错误", "error", err)
		}
	}
}

// Close 停止监听
func (s *RubricSource) Close() error {
	close(s.stopChan)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// extractVersion 从细则文档首部解析 "Version: x.y" 行
func extractVersion(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		// 只扫描文档开头的非正文区
		if strings.HasPrefix(line, "## ") {
			break
		}
	}
	return "1.0"
}
