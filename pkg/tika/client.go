// Package tika 提供了一个与 Apache Tika 服务器交互的客户端。
package tika

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"docmind-go/internal/config"
	"docmind-go/pkg/log"
)

// Client 是 Tika 服务器的客户端，实现了摄取管道的文本提取接口。
type Client struct {
	serverURL string
	client    *http.Client
}

// NewClient 创建一个新的 Tika 客户端实例。
func NewClient(cfg config.TikaConfig) *Client {
	return &Client{
		serverURL: cfg.ServerURL,
		client:    http.DefaultClient,
	}
}

// Extract 调用 Tika 提取文件的纯文本与页数。
// 页数来自 /meta 的 xmpTPg:NPages 字段；非分页格式取不到页数时按 1 页处理。
func (c *Client) Extract(ctx context.Context, data []byte, fileName string) (string, int, error) {
	text, err := c.extractText(ctx, data, fileName)
	if err != nil {
		return "", 0, err
	}

	numPages, err := c.extractPageCount(ctx, data, fileName)
	if err != nil {
		log.Warnf("[TikaClient] 获取页数失败, 按 1 页处理: %v", err)
		numPages = 1
	}
	return text, numPages, nil
}

// extractText 自动根据文件后缀推断 MIME 类型，并调用 Tika 提取文本。
func (c *Client) extractText(ctx context.Context, data []byte, fileName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", c.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", detectMimeType(fileName))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("调用 Tika 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Tika 返回错误 [%d]: %s", resp.StatusCode, string(body))
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return "", fmt.Errorf("读取 Tika 响应失败: %w", err)
	}

	return buf.String(), nil
}

// extractPageCount 调用 /meta 获取文档元数据中的页数。
func (c *Client) extractPageCount(ctx context.Context, data []byte, fileName string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", c.serverURL+"/meta", bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", detectMimeType(fileName))

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("调用 Tika 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("Tika 返回错误 [%d]: %s", resp.StatusCode, string(body))
	}

	var meta map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return 0, fmt.Errorf("解析 Tika 元数据失败: %w", err)
	}

	// Tika 的元数据值通常是字符串
	raw, ok := meta["xmpTPg:NPages"]
	if !ok {
		return 0, fmt.Errorf("元数据中缺少 xmpTPg:NPages 字段")
	}
	numPages, err := strconv.Atoi(fmt.Sprint(raw))
	if err != nil || numPages < 1 {
		return 0, fmt.Errorf("无效的页数值: %v", raw)
	}
	return numPages, nil
}

// detectMimeType 根据文件扩展名判断 Content-Type
func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		// fallback 默认
		return "application/octet-stream"
	}
	return mimeType
}
