package service

import (
	"context"
	"fmt"

	"docmind-go/internal/model"
	"docmind-go/internal/repository"
	"docmind-go/internal/retriever"
	"docmind-go/pkg/embedding"
	"docmind-go/pkg/log"
)

// QuestionService 定义了基于已摄取文档的问答操作。
type QuestionService interface {
	Ask(ctx context.Context, documentID, question string) (*model.Answer, error)
}

type questionService struct {
	docRepo         repository.DocumentRepository
	embeddingClient embedding.Client
	answerService   AnswerService
	topK            int
}

// NewQuestionService 创建一个新的 QuestionService 实例。
func NewQuestionService(
	docRepo repository.DocumentRepository,
	embeddingClient embedding.Client,
	answerService AnswerService,
	topK int,
) QuestionService {
	if topK <= 0 {
		topK = retriever.DefaultTopK
	}
	return &questionService{
		docRepo:         docRepo,
		embeddingClient: embeddingClient,
		answerService:   answerService,
		topK:            topK,
	}
}

// Ask 执行完整的问答流程：查文档 -> 向量化问题 -> 相似度检索 -> 生成答案。
func (s *questionService) Ask(ctx context.Context, documentID, question string) (*model.Answer, error) {
	log.Infof("[QuestionService] 收到提问, DocumentID: %s, question: '%s'", documentID, question)

	// 1. 查找文档
	doc, ok := s.docRepo.Get(documentID)
	if !ok {
		return nil, model.ErrDocumentNotFound
	}

	// 2. 向量化问题
	queryEmbedding, err := s.embeddingClient.CreateEmbedding(ctx, question)
	if err != nil {
		log.Errorf("[QuestionService] 问题向量化失败: %v", err)
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}

	// 3. 相似度检索
	retrieved := retriever.Rank(queryEmbedding, doc, s.topK)
	log.Infof("[QuestionService] 检索完成, 命中 %d 个分块", len(retrieved))

	// 4. 生成答案（内部吸收生成失败，不会返回错误）
	return s.answerService.Answer(ctx, question, retrieved), nil
}
