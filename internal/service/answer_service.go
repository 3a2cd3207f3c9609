// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docmind-go/internal/model"
	"docmind-go/pkg/llm"
	"docmind-go/pkg/log"
)

// 固定回复文案。兜底回复用于吸收一切答案生成失败，错误不会上抛。
const (
	NoAnswerText = "I don't know."
	FallbackText = "I encountered an error processing your question. Please try again."
)

const answerPromptTemplate = `Below are relevant text chunks extracted from the user's uploaded PDF.
Each chunk shows the page number and text snippet.

--- BEGIN CHUNKS ---
%s
--- END CHUNKS ---

User Question: %s

Instructions:
- Read the chunks carefully.
- Answer the question briefly (2-3 sentences max).
- List only those chunks that support the answer.
- Return your result strictly in JSON format:
{
  "answer": "short 1-3 sentence factual answer",
  "citations": [
    {"page": <number>, "chunkId": "<string>", "snippet": "<<=30 words excerpt used>"}
  ],
  "follow_up": "optional 1 short follow-up question or empty string"
}

Rules:
- Use only the provided text chunks.
- If uncertain, answer "I don't know." with empty citations.
- Never invent data not found in the text.
- Keep output concise.

Respond ONLY with the JSON object, nothing else.`

// AnswerService 负责构建 grounding prompt、调用答案生成模型并解析其结构化输出。
// 该层永远不返回错误：生成或解析失败时降级为固定的兜底回复。
type AnswerService interface {
	Answer(ctx context.Context, question string, retrieved []model.RetrievalResult) *model.Answer
}

type answerService struct {
	llmClient llm.Client
}

// NewAnswerService 创建一个新的 AnswerService 实例。
func NewAnswerService(llmClient llm.Client) AnswerService {
	return &answerService{llmClient: llmClient}
}

// Answer 基于检索到的分块生成带引用的答案。
// 检索结果为空时直接短路返回 "I don't know."，不调用生成模型。
func (s *answerService) Answer(ctx context.Context, question string, retrieved []model.RetrievalResult) *model.Answer {
	if len(retrieved) == 0 {
		log.Infof("[AnswerService] 检索结果为空, 短路返回, question: '%s'", question)
		return &model.Answer{
			Answer:    NoAnswerText,
			Citations: []model.Citation{},
			FollowUp:  "",
		}
	}

	prompt := buildPrompt(question, retrieved)
	log.Infof("[AnswerService] 开始调用答案生成模型, question: '%s', 上下文分块数: %d", question, len(retrieved))

	raw, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		log.Errorf("[AnswerService] 答案生成调用失败, 返回兜底回复: %v", err)
		return fallbackAnswer()
	}

	answer, err := parseAnswer(raw)
	if err != nil {
		log.Errorf("[AnswerService] 解析模型输出失败, 返回兜底回复: %v", err)
		return fallbackAnswer()
	}

	log.Infof("[AnswerService] 答案生成成功, 引用数: %d", len(answer.Citations))
	return answer
}

// buildPrompt 将每个分块的标识、估算页码与原文拼装进 grounding prompt。
func buildPrompt(question string, retrieved []model.RetrievalResult) string {
	var contextBuilder strings.Builder
	for i, r := range retrieved {
		if i > 0 {
			contextBuilder.WriteString("\n\n")
		}
		contextBuilder.WriteString(fmt.Sprintf("[%s | page: %d]\n%q", r.ChunkID, r.Page, r.Text))
	}
	return fmt.Sprintf(answerPromptTemplate, contextBuilder.String(), question)
}

// parseAnswer 从模型的原始输出中解析结构化答案。
// 模型可能在 JSON 前后附带说明文字，这里只解析第一个括号配平的 JSON 对象。
func parseAnswer(raw string) (*model.Answer, error) {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("模型输出中未找到有效的 JSON 对象")
	}

	var answer model.Answer
	if err := json.Unmarshal([]byte(payload), &answer); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %w", err)
	}
	if answer.Citations == nil {
		answer.Citations = []model.Citation{}
	}
	return &answer, nil
}

// extractJSONObject 定位原始文本中第一个括号配平的 JSON 对象。
// 字符串字面量内的花括号与转义引号不计入配平。
func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

func fallbackAnswer() *model.Answer {
	return &model.Answer{
		Answer:    FallbackText,
		Citations: []model.Citation{},
		FollowUp:  "",
	}
}
