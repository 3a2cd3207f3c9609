package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmind-go/internal/model"
	"docmind-go/internal/repository"
)

// fakeEmbeddingClient 模拟向量化服务。
type fakeEmbeddingClient struct {
	embedding []float32
	err       error
}

func (f *fakeEmbeddingClient) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeEmbeddingClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))
	for _, text := range texts {
		embedding, err := f.CreateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		result = append(result, embedding)
	}
	return result, nil
}

// recordingAnswerService 记录收到的检索结果并返回固定答案。
type recordingAnswerService struct {
	retrieved []model.RetrievalResult
	answer    *model.Answer
}

func (r *recordingAnswerService) Answer(_ context.Context, _ string, retrieved []model.RetrievalResult) *model.Answer {
	r.retrieved = retrieved
	return r.answer
}

func storedDocument() *model.Document {
	return &model.Document{
		ID:         "doc_test",
		Filename:   "manual.pdf",
		UploadedAt: time.Now(),
		NumPages:   3,
		Chunks: []model.Chunk{
			{ChunkID: "chunk-1", Page: 1, Text: "Installation requires a grounded outlet."},
			{ChunkID: "chunk-2", Page: 2, Text: "The warranty period is two years."},
			{ChunkID: "chunk-3", Page: 3, Text: "Clean the filter every month."},
		},
		Embeddings: [][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
}

func TestQuestionService_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("文档不存在时返回未找到错误", func(t *testing.T) {
		repo := repository.NewDocumentRepository()
		svc := NewQuestionService(repo, &fakeEmbeddingClient{}, &recordingAnswerService{}, 3)

		answer, err := svc.Ask(ctx, "doc_missing", "q")
		assert.Nil(t, answer)
		assert.ErrorIs(t, err, model.ErrDocumentNotFound)
	})

	t.Run("问题向量化失败时返回向量化错误", func(t *testing.T) {
		repo := repository.NewDocumentRepository()
		repo.Put("doc_test", storedDocument())
		embedder := &fakeEmbeddingClient{err: errors.New("connection refused")}
		svc := NewQuestionService(repo, embedder, &recordingAnswerService{}, 3)

		answer, err := svc.Ask(ctx, "doc_test", "q")
		assert.Nil(t, answer)
		assert.ErrorIs(t, err, model.ErrEmbedding)
	})

	t.Run("完整流程按相似度检索并交给答案服务", func(t *testing.T) {
		repo := repository.NewDocumentRepository()
		repo.Put("doc_test", storedDocument())
		// 查询向量与 chunk-2 的向量同向, chunk-2 应当排在首位。
		embedder := &fakeEmbeddingClient{embedding: []float32{0, 1, 0}}
		answerSvc := &recordingAnswerService{
			answer: &model.Answer{Answer: "two years", Citations: []model.Citation{}},
		}
		svc := NewQuestionService(repo, embedder, answerSvc, 2)

		answer, err := svc.Ask(ctx, "doc_test", "How long is the warranty?")
		require.NoError(t, err)
		require.NotNil(t, answer)
		assert.Equal(t, "two years", answer.Answer)

		require.Len(t, answerSvc.retrieved, 2)
		assert.Equal(t, "chunk-2", answerSvc.retrieved[0].ChunkID)
		assert.Equal(t, 1, answerSvc.retrieved[0].Rank)
		assert.InDelta(t, 1.0, answerSvc.retrieved[0].Similarity, 1e-6)
	})

	t.Run("topK 非法时回退到默认值", func(t *testing.T) {
		repo := repository.NewDocumentRepository()
		repo.Put("doc_test", storedDocument())
		embedder := &fakeEmbeddingClient{embedding: []float32{1, 0, 0}}
		answerSvc := &recordingAnswerService{answer: &model.Answer{Answer: "ok"}}
		svc := NewQuestionService(repo, embedder, answerSvc, 0)

		_, err := svc.Ask(ctx, "doc_test", "q")
		require.NoError(t, err)
		// 默认 topK 为 3, 文档共 3 个分块, 全部命中。
		assert.Len(t, answerSvc.retrieved, 3)
	})
}
