package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmind-go/internal/model"
)

// fakeLLMClient 模拟答案生成模型。
type fakeLLMClient struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLMClient) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func sampleRetrieved() []model.RetrievalResult {
	return []model.RetrievalResult{
		{
			Chunk:      model.Chunk{ChunkID: "chunk-3", Page: 2, Text: "The warranty period is two years."},
			Similarity: 0.91,
			Rank:       1,
		},
		{
			Chunk:      model.Chunk{ChunkID: "chunk-7", Page: 5, Text: "Claims must be filed in writing."},
			Similarity: 0.74,
			Rank:       2,
		},
	}
}

func TestAnswerService_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("检索结果为空时短路且不调用生成模型", func(t *testing.T) {
		client := &fakeLLMClient{}
		svc := NewAnswerService(client)

		answer := svc.Answer(ctx, "What is the warranty?", nil)
		require.NotNil(t, answer)
		assert.Equal(t, NoAnswerText, answer.Answer)
		assert.Empty(t, answer.Citations)
		assert.Equal(t, "", answer.FollowUp)
		assert.Zero(t, client.calls)
	})

	t.Run("解析夹带说明文字的 JSON 输出", func(t *testing.T) {
		client := &fakeLLMClient{
			response: "Sure, here is the result:\n" +
				`{"answer": "The warranty period is two years.", "citations": [{"page": 2, "chunkId": "chunk-3", "snippet": "warranty period is two years"}], "follow_up": ""}` +
				"\nLet me know if you need anything else.",
		}
		svc := NewAnswerService(client)

		answer := svc.Answer(ctx, "What is the warranty?", sampleRetrieved())
		assert.Equal(t, "The warranty period is two years.", answer.Answer)
		require.Len(t, answer.Citations, 1)
		assert.Equal(t, 2, answer.Citations[0].Page)
		assert.Equal(t, "chunk-3", answer.Citations[0].ChunkID)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("prompt 包含分块标识、页码、原文与问题", func(t *testing.T) {
		client := &fakeLLMClient{response: `{"answer": "x", "citations": [], "follow_up": ""}`}
		svc := NewAnswerService(client)

		svc.Answer(ctx, "What is the warranty?", sampleRetrieved())
		assert.Contains(t, client.lastPrompt, "chunk-3")
		assert.Contains(t, client.lastPrompt, "page: 2")
		assert.Contains(t, client.lastPrompt, "The warranty period is two years.")
		assert.Contains(t, client.lastPrompt, "User Question: What is the warranty?")
		assert.Contains(t, client.lastPrompt, "--- BEGIN CHUNKS ---")
		assert.Contains(t, client.lastPrompt, "Respond ONLY with the JSON object")
	})

	t.Run("输出不含 JSON 时返回兜底回复", func(t *testing.T) {
		client := &fakeLLMClient{response: "I cannot answer in the requested format."}
		svc := NewAnswerService(client)

		answer := svc.Answer(ctx, "q", sampleRetrieved())
		assert.Equal(t, FallbackText, answer.Answer)
		assert.Empty(t, answer.Citations)
	})

	t.Run("JSON 损坏时返回兜底回复", func(t *testing.T) {
		client := &fakeLLMClient{response: `{"answer": "truncated`}
		svc := NewAnswerService(client)

		answer := svc.Answer(ctx, "q", sampleRetrieved())
		assert.Equal(t, FallbackText, answer.Answer)
	})

	t.Run("生成调用失败时返回兜底回复而不是错误", func(t *testing.T) {
		client := &fakeLLMClient{err: errors.New("rate limited")}
		svc := NewAnswerService(client)

		answer := svc.Answer(ctx, "q", sampleRetrieved())
		require.NotNil(t, answer)
		assert.Equal(t, FallbackText, answer.Answer)
		assert.Empty(t, answer.Citations)
		assert.Equal(t, "", answer.FollowUp)
	})

	t.Run("citations 缺失时归一为空切片", func(t *testing.T) {
		client := &fakeLLMClient{response: `{"answer": "I don't know.", "follow_up": ""}`}
		svc := NewAnswerService(client)

		answer := svc.Answer(ctx, "q", sampleRetrieved())
		require.NotNil(t, answer.Citations)
		assert.Empty(t, answer.Citations)
	})
}

func TestExtractJSONObject(t *testing.T) {
	t.Run("提取第一个配平对象", func(t *testing.T) {
		payload, ok := extractJSONObject(`noise {"a": 1} trailing {"b": 2}`)
		require.True(t, ok)
		assert.Equal(t, `{"a": 1}`, payload)
	})

	t.Run("嵌套对象整体提取", func(t *testing.T) {
		payload, ok := extractJSONObject(`{"a": {"b": [1, 2]}, "c": "d"}`)
		require.True(t, ok)
		assert.Equal(t, `{"a": {"b": [1, 2]}, "c": "d"}`, payload)
	})

	t.Run("字符串内的花括号不参与配平", func(t *testing.T) {
		payload, ok := extractJSONObject(`{"answer": "curly } brace \" inside"}`)
		require.True(t, ok)
		assert.Equal(t, `{"answer": "curly } brace \" inside"}`, payload)
	})

	t.Run("没有对象时返回失败", func(t *testing.T) {
		_, ok := extractJSONObject("plain text only")
		assert.False(t, ok)
	})

	t.Run("未闭合的对象返回失败", func(t *testing.T) {
		_, ok := extractJSONObject(`{"answer": "x"`)
		assert.False(t, ok)
	})
}
