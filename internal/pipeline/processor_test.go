package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmind-go/internal/chunker"
	"docmind-go/internal/model"
	"docmind-go/internal/repository"
)

// fakeExtractor 模拟文本提取后端。
type fakeExtractor struct {
	text     string
	numPages int
	err      error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _ string) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return f.text, f.numPages, nil
}

// fakeEmbedder 模拟向量化客户端，可指定在第 failAt 次调用时失败（从 1 计数）。
type fakeEmbedder struct {
	dim    int
	failAt int
	calls  int
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("embedding api unavailable")
	}
	vector := make([]float32, f.dim)
	vector[0] = float32(f.calls)
	return vector, nil
}

func (f *fakeEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		v, err := f.CreateEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("第 %d 段文本向量化失败: %w", i+1, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

func newTestProcessor(t *testing.T, extractor TextExtractor, embedder *fakeEmbedder) (*Processor, repository.DocumentRepository) {
	t.Helper()
	splitter, err := chunker.NewSplitter(100, 20)
	require.NoError(t, err)
	repo := repository.NewDocumentRepository()
	return NewProcessor(extractor, embedder, splitter, repo), repo
}

func sampleText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	return strings.TrimSpace(b.String())
}

func TestProcessor_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("摄取成功并满足对齐不变式", func(t *testing.T) {
		extractor := &fakeExtractor{text: sampleText(30), numPages: 4}
		embedder := &fakeEmbedder{dim: 8}
		processor, repo := newTestProcessor(t, extractor, embedder)

		result, err := processor.Ingest(ctx, "report.pdf", []byte("%PDF-"))
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, strings.HasPrefix(result.DocumentID, "doc_"))
		assert.Equal(t, "report.pdf", result.Filename)
		assert.Equal(t, 4, result.NumPages)
		assert.Greater(t, result.NumChunks, 0)

		doc, ok := repo.Get(result.DocumentID)
		require.True(t, ok)
		// chunks 与 embeddings 按下标一一对应
		require.Equal(t, len(doc.Chunks), len(doc.Embeddings))
		assert.Equal(t, result.NumChunks, len(doc.Chunks))
		for i, chunk := range doc.Chunks {
			assert.Equal(t, fmt.Sprintf("chunk-%d", i+1), chunk.ChunkID)
			assert.GreaterOrEqual(t, chunk.Page, 1)
			assert.LessOrEqual(t, chunk.Page, doc.NumPages)
		}
		// 页码随分块序号单调不减
		for i := 1; i < len(doc.Chunks); i++ {
			assert.GreaterOrEqual(t, doc.Chunks[i].Page, doc.Chunks[i-1].Page)
		}
	})

	t.Run("提取失败时中止且不入库", func(t *testing.T) {
		extractor := &fakeExtractor{err: errors.New("tika unreachable")}
		embedder := &fakeEmbedder{dim: 8}
		processor, repo := newTestProcessor(t, extractor, embedder)

		_, err := processor.Ingest(ctx, "broken.pdf", []byte("xx"))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrExtraction)
		assert.Empty(t, repo.ListAll())
		assert.Zero(t, embedder.calls)
	})

	t.Run("提取文本为空时中止", func(t *testing.T) {
		extractor := &fakeExtractor{text: "   \n  ", numPages: 2}
		processor, repo := newTestProcessor(t, extractor, &fakeEmbedder{dim: 8})

		_, err := processor.Ingest(ctx, "empty.pdf", []byte("xx"))
		assert.ErrorIs(t, err, model.ErrExtraction)
		assert.Empty(t, repo.ListAll())
	})

	t.Run("任一分块向量化失败则整体失败且不入库", func(t *testing.T) {
		extractor := &fakeExtractor{text: sampleText(30), numPages: 4}
		embedder := &fakeEmbedder{dim: 8, failAt: 2}
		processor, repo := newTestProcessor(t, extractor, embedder)

		_, err := processor.Ingest(ctx, "report.pdf", []byte("%PDF-"))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrEmbedding)
		assert.Empty(t, repo.ListAll())
	})

	t.Run("页数小于 1 时按 1 页处理", func(t *testing.T) {
		extractor := &fakeExtractor{text: sampleText(10), numPages: 0}
		processor, repo := newTestProcessor(t, extractor, &fakeEmbedder{dim: 8})

		result, err := processor.Ingest(ctx, "odd.pdf", []byte("%PDF-"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.NumPages)

		doc, ok := repo.Get(result.DocumentID)
		require.True(t, ok)
		for _, chunk := range doc.Chunks {
			assert.Equal(t, 1, chunk.Page)
		}
	})

	t.Run("每次摄取生成不同的文档 id", func(t *testing.T) {
		extractor := &fakeExtractor{text: sampleText(10), numPages: 1}
		processor, _ := newTestProcessor(t, extractor, &fakeEmbedder{dim: 8})

		first, err := processor.Ingest(ctx, "a.pdf", []byte("%PDF-"))
		require.NoError(t, err)
		second, err := processor.Ingest(ctx, "a.pdf", []byte("%PDF-"))
		require.NoError(t, err)
		assert.NotEqual(t, first.DocumentID, second.DocumentID)
	})
}
