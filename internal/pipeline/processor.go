// Package pipeline 定义了文档摄取的核心流程。
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docmind-go/internal/chunker"
	"docmind-go/internal/model"
	"docmind-go/internal/repository"
	"docmind-go/pkg/embedding"
	"docmind-go/pkg/log"
)

// TextExtractor 抽象了文本提取后端（本地 pdfcpu 或外部 Tika 服务器）。
// 返回全文与页数（>=1）；提取失败时摄取流程整体中止。
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileName string) (text string, numPages int, err error)
}

// Processor 封装了文档摄取的所有依赖和逻辑。
type Processor struct {
	extractor       TextExtractor
	embeddingClient embedding.Client
	splitter        *chunker.Splitter
	docRepo         repository.DocumentRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	extractor TextExtractor,
	embeddingClient embedding.Client,
	splitter *chunker.Splitter,
	docRepo repository.DocumentRepository,
) *Processor {
	return &Processor{
		extractor:       extractor,
		embeddingClient: embeddingClient,
		splitter:        splitter,
		docRepo:         docRepo,
	}
}

// IngestResult 是摄取成功后返回的摘要信息。
type IngestResult struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	NumPages   int    `json:"numPages"`
	NumChunks  int    `json:"numChunks"`
}

// Ingest 是文档摄取的主函数：提取 -> 分块 -> 页码估算 -> 向量化 -> 入库。
// 全流程任一步失败都不会留下部分入库的文档；Document 在全部分块
// 向量化完成后一次性发布，读取方不会看到构建中的文档。
func (p *Processor) Ingest(ctx context.Context, fileName string, data []byte) (*IngestResult, error) {
	log.Infof("[Processor] 开始摄取文档, FileName: %s, Size: %d 字节", fileName, len(data))

	// 1. 提取文本与页数
	log.Info("[Processor] 步骤1: 提取文本内容")
	text, numPages, err := p.extractor.Extract(ctx, data, fileName)
	if err != nil {
		log.Errorf("[Processor] 文本提取失败, FileName: %s, Error: %v", fileName, err)
		return nil, fmt.Errorf("%w: %v", model.ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		log.Warnf("[Processor] 提取的文本内容为空, 处理中止, FileName: %s", fileName)
		return nil, fmt.Errorf("%w: 提取的文本内容为空", model.ErrExtraction)
	}
	if numPages < 1 {
		numPages = 1
	}
	totalLen := utf8.RuneCountInString(text)
	log.Infof("[Processor] 步骤1: 文本提取成功, 页数: %d, 内容长度: %d 字符", numPages, totalLen)

	// 2. 文本切块
	log.Info("[Processor] 步骤2: 进行文本分块")
	segments := p.splitter.Split(text)
	if len(segments) == 0 {
		log.Warnf("[Processor] 未生成任何文本分块, 处理中止, FileName: %s", fileName)
		return nil, fmt.Errorf("%w: 未生成任何文本分块", model.ErrExtraction)
	}
	log.Infof("[Processor] 步骤2: 文本分块完成, 共生成 %d 个分块", len(segments))

	// 3. 页码估算
	log.Info("[Processor] 步骤3: 估算分块页码")
	pages := chunker.EstimatePages(segments, totalLen, numPages)

	// 4. 逐块向量化，全部成功才会入库
	log.Infof("[Processor] 步骤4: 开始向量化 %d 个分块", len(segments))
	embeddings, err := p.embeddingClient.CreateEmbeddings(ctx, segments)
	if err != nil {
		log.Errorf("[Processor] 分块向量化失败, FileName: %s, Error: %v", fileName, err)
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}
	log.Info("[Processor] 步骤4: 所有分块向量化完成")

	// 5. 组装 Document 并一次性发布到仓库
	documentID := "doc_" + uuid.New().String()
	chunks := make([]model.Chunk, len(segments))
	for i, segment := range segments {
		chunks[i] = model.Chunk{
			ChunkID: fmt.Sprintf("chunk-%d", i+1),
			Page:    pages[i],
			Text:    segment,
		}
	}
	doc := &model.Document{
		ID:         documentID,
		Filename:   fileName,
		UploadedAt: time.Now(),
		NumPages:   numPages,
		Chunks:     chunks,
		Embeddings: embeddings,
	}
	p.docRepo.Put(documentID, doc)

	log.Infof("[Processor] 文档摄取成功, DocumentID: %s, 分块数: %d", documentID, len(chunks))
	return &IngestResult{
		DocumentID: documentID,
		Filename:   fileName,
		NumPages:   numPages,
		NumChunks:  len(chunks),
	}, nil
}
