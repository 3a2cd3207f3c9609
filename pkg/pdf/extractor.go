// Package pdf 使用 pdfcpu 在进程内提取 PDF 文本与页数，无需外部提取服务。
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docmind-go/pkg/log"
)

// Extractor 是基于 pdfcpu 的本地文本提取器。
// pdfcpu 以文件为输入，这里通过临时文件中转。
type Extractor struct {
	tempDir string
}

// NewExtractor 创建一个本地 PDF 提取器。
func NewExtractor() *Extractor {
	tempDir := filepath.Join(os.TempDir(), "docmind-pdf")
	_ = os.MkdirAll(tempDir, 0755)
	return &Extractor{tempDir: tempDir}
}

// Extract 提取 PDF 的全文与页数。
// 全文按页序拼接；任一环节失败即提取失败，由摄取流程中止处理。
func (e *Extractor) Extract(ctx context.Context, data []byte, fileName string) (string, int, error) {
	workID := uuid.New().String()
	tempFile := filepath.Join(e.tempDir, fmt.Sprintf("extract_%s.pdf", workID))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", 0, fmt.Errorf("写入临时 PDF 文件失败: %w", err)
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return "", 0, fmt.Errorf("读取 PDF 失败: %w", err)
	}
	pageCount := pdfCtx.PageCount
	if pageCount < 1 {
		return "", 0, fmt.Errorf("PDF 不包含任何页面")
	}

	outDir := filepath.Join(e.tempDir, fmt.Sprintf("pages_%s", workID))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", 0, fmt.Errorf("创建内容输出目录失败: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", 0, fmt.Errorf("提取 PDF 内容失败: %w", err)
	}

	pageTexts := readPageTexts(outDir)

	// 按页序拼接全文，页间以空行分隔
	var fullText strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		if fullText.Len() > 0 {
			fullText.WriteString("\n\n")
		}
		fullText.WriteString(text)
	}

	log.Infof("[PDFExtractor] 提取完成, 文件: %s, 页数: %d, 文本长度: %d", fileName, pageCount, fullText.Len())
	return fullText.String(), pageCount, nil
}

// readPageTexts 读取 pdfcpu 输出目录中的逐页内容文件。
func readPageTexts(outDir string) map[int]string {
	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
			continue
		}
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}
	return pageTexts
}
