// Package model 定义了文档问答服务的核心数据结构。
package model

import "time"

// Chunk 表示从文档全文中切分出的一个文本分块，是检索与引用的最小单元。
type Chunk struct {
	ChunkID string `json:"chunkId"` // 文档内唯一，形如 chunk-1、chunk-2
	Page    int    `json:"page"`    // 估算的来源页码，范围 [1, NumPages]
	Text    string `json:"text"`
}

// Document 表示一篇已完成摄取的文档。
// Chunks 与 Embeddings 按下标一一对应，长度始终相等；摄取完成后不再修改。
type Document struct {
	ID         string
	Filename   string
	UploadedAt time.Time
	NumPages   int
	Chunks     []Chunk
	Embeddings [][]float32
}

// RetrievalResult 表示一个分块与查询的相似度打分结果。
type RetrievalResult struct {
	Chunk
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
}

// DocumentSummaryDTO 定义了返回给前端的文档元数据结构。
type DocumentSummaryDTO struct {
	DocumentID string    `json:"documentId"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
	NumPages   int       `json:"numPages"`
	NumChunks  int       `json:"numChunks"`
}

// NewDocumentSummary 从 Document 组装摘要 DTO。
func NewDocumentSummary(doc *Document) DocumentSummaryDTO {
	return DocumentSummaryDTO{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		UploadedAt: doc.UploadedAt,
		NumPages:   doc.NumPages,
		NumChunks:  len(doc.Chunks),
	}
}
