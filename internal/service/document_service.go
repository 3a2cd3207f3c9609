package service

import (
	"context"

	"docmind-go/internal/model"
	"docmind-go/internal/pipeline"
	"docmind-go/internal/repository"
	"docmind-go/pkg/log"
)

// DocumentService 接口定义了文档管理操作。
type DocumentService interface {
	IngestDocument(ctx context.Context, fileName string, data []byte) (*pipeline.IngestResult, error)
	GetDocument(id string) (*model.DocumentSummaryDTO, error)
	ListDocuments() []model.DocumentSummaryDTO
	DeleteDocument(id string) error
}

type documentService struct {
	processor *pipeline.Processor
	docRepo   repository.DocumentRepository
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(processor *pipeline.Processor, docRepo repository.DocumentRepository) DocumentService {
	return &documentService{
		processor: processor,
		docRepo:   docRepo,
	}
}

// IngestDocument 执行完整的文档摄取流程并返回摘要。
func (s *documentService) IngestDocument(ctx context.Context, fileName string, data []byte) (*pipeline.IngestResult, error) {
	return s.processor.Ingest(ctx, fileName, data)
}

// GetDocument 按 id 返回文档元数据摘要。
func (s *documentService) GetDocument(id string) (*model.DocumentSummaryDTO, error) {
	doc, ok := s.docRepo.Get(id)
	if !ok {
		return nil, model.ErrDocumentNotFound
	}
	summary := model.NewDocumentSummary(doc)
	return &summary, nil
}

// ListDocuments 按插入顺序返回所有文档的摘要。
func (s *documentService) ListDocuments() []model.DocumentSummaryDTO {
	docs := s.docRepo.ListAll()
	summaries := make([]model.DocumentSummaryDTO, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, model.NewDocumentSummary(doc))
	}
	return summaries
}

// DeleteDocument 按 id 删除文档，id 不存在时返回 ErrDocumentNotFound。
func (s *documentService) DeleteDocument(id string) error {
	if !s.docRepo.Delete(id) {
		return model.ErrDocumentNotFound
	}
	log.Infof("[DocumentService] 文档已删除, DocumentID: %s", id)
	return nil
}
