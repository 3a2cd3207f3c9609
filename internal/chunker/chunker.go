// Package chunker 实现了带重叠窗口的文本切分与分块页码估算。
package chunker

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"docmind-go/internal/model"
)

// 默认的分块参数，与检索效果调优后的经验值一致。
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Splitter 将长文本切分为带重叠的分块序列。
// 相同输入与相同配置总是产生相同的分块结果，不依赖任何外部调用。
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter 创建一个 Splitter。size 或 overlap 为 0 时使用默认值；
// overlap >= size 属于配置错误。
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size == 0 {
		size = DefaultChunkSize
	}
	if overlap == 0 {
		overlap = DefaultChunkOverlap
	}
	if size < 0 || overlap < 0 {
		return nil, fmt.Errorf("%w: chunkSize=%d, chunkOverlap=%d", model.ErrInvalidChunkConfig, size, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunkOverlap(%d) 必须小于 chunkSize(%d)", model.ErrInvalidChunkConfig, overlap, size)
	}
	return &Splitter{chunkSize: size, chunkOverlap: overlap}, nil
}

// Split 将文本按 chunkSize 切分为重叠窗口，相邻分块共享 chunkOverlap 个字符。
// 切分点优先落在段落、句子或单词边界上；回看区间内找不到边界时在 chunkSize 处硬切。
// 最后一个分块可以短于 chunkSize。
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := s.findBreak(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		next := cut - s.chunkOverlap
		if next <= start {
			// 分块过短时放弃重叠，保证向前推进
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak 在窗口尾部的回看区间内从后向前寻找最自然的切分点。
// 优先级：段落边界 > 句子边界 > 单词边界；都找不到则返回 end 硬切。
func (s *Splitter) findBreak(runes []rune, start, end int) int {
	lookback := end - s.chunkSize/5
	if lookback <= start {
		lookback = start + 1
	}

	// 段落边界：连续两个换行
	for i := end - 1; i > lookback; i-- {
		if runes[i-1] == '\n' && runes[i] == '\n' {
			return i + 1
		}
	}
	// 句子边界：中英文句末标点
	for i := end - 1; i >= lookback; i-- {
		if isSentenceEnd(runes[i]) {
			return i + 1
		}
	}
	// 单词边界：任意空白
	for i := end - 1; i >= lookback; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '；', '.', '!', '?', ';':
		return true
	}
	return false
}

// EstimatePages 依据均匀字符密度假设为每个分块估算来源页码。
// avgCharsPerPage = totalLen / numPages；分块页码 = ceil(pos / avg)，
// 结果恒被钳制在 [1, numPages] 内。这是一个启发式估算而非精确映射，
// 对图片或空白较多的版面可能出现页码偏差，但足以支撑引用定位。
func EstimatePages(segments []string, totalLen, numPages int) []int {
	if numPages < 1 {
		numPages = 1
	}
	avg := float64(totalLen) / float64(numPages)

	pages := make([]int, len(segments))
	pos := 0
	for i, seg := range segments {
		page := 1
		if avg > 0 {
			page = int(math.Ceil(float64(pos) / avg))
		}
		if page < 1 {
			page = 1
		}
		if page > numPages {
			page = numPages
		}
		pages[i] = page
		pos += utf8.RuneCountInString(seg)
	}
	return pages
}
